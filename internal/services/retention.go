package services

import (
	"context"
	"time"

	"github.com/yungbote/prompt-battle/internal/data/repos"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

// RetentionService deletes generation records older than the retention.
// A zero retention keeps records forever. Grade records are never touched.
type RetentionService interface {
	Sweep(ctx context.Context) (int64, error)
	Run(ctx context.Context)
}

type retentionService struct {
	log       *logger.Logger
	records   repos.GenerationRecordRepo
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewRetentionService(baseLog *logger.Logger, records repos.GenerationRecordRepo, retention, interval time.Duration) RetentionService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &retentionService{
		log:       baseLog.With("service", "RetentionService"),
		records:   records,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

func (s *retentionService) Sweep(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.records.DeleteOlderThan(dbctx.New(ctx), s.now().UTC().Add(-s.retention))
}

func (s *retentionService) Run(ctx context.Context) {
	if s.retention <= 0 {
		return
	}
	s.log.Info("Retention sweeper started", "retention", s.retention, "interval", s.interval)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("Retention sweep failed", "error", err)
			}
		}
	}
}
