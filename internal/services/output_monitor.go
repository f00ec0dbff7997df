package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yungbote/prompt-battle/internal/data/repos"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/realtime"
	"github.com/yungbote/prompt-battle/internal/session"
)

const DefaultMonitorPollInterval = 100 * time.Millisecond

// OutputMonitorService blocks until one stage of one call has a record, then
// returns it once. Records are durable, so awaiting a delivered stage again
// returns immediately.
type OutputMonitorService interface {
	Await(ctx context.Context, callID string, stage types.Stage) (StageView, error)
}

type outputMonitorService struct {
	log          *logger.Logger
	hub          *realtime.SSEHub
	records      repos.GenerationRecordRepo
	sessions     *session.Store
	pollInterval time.Duration
	timeout      time.Duration
}

func NewOutputMonitorService(
	baseLog *logger.Logger,
	hub *realtime.SSEHub,
	records repos.GenerationRecordRepo,
	sessions *session.Store,
	pollInterval time.Duration,
	timeout time.Duration,
) OutputMonitorService {
	if pollInterval <= 0 {
		pollInterval = DefaultMonitorPollInterval
	}
	return &outputMonitorService{
		log:          baseLog.With("service", "OutputMonitorService"),
		hub:          hub,
		records:      records,
		sessions:     sessions,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

func (s *outputMonitorService) Await(ctx context.Context, callID string, stage types.Stage) (StageView, error) {
	callID, err := requireCallID(callID)
	if err != nil {
		return StageView{}, err
	}
	if !stage.Valid() {
		return StageView{}, apierr.New(http.StatusBadRequest, "invalid_stage", types.ErrInvalidStage)
	}

	waitCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Subscribe before the first lookup so a completion landing in between
	// is not missed.
	channel := types.RecordKey(callID, stage)
	var events <-chan realtime.SSEMessage
	if s.hub != nil {
		client := s.hub.NewSSEClient()
		s.hub.AddChannel(client, channel)
		defer s.hub.CloseClient(client)
		events = client.Outbound
	}

	var slotDone <-chan struct{}
	var slot *session.Slot
	checkSlot := func() (StageView, bool) {
		if slot == nil && s.sessions != nil {
			if sl, ok := s.sessions.SlotFor(callID, stage); ok {
				slot = sl
				slotDone = sl.Done()
			}
		}
		if slot == nil {
			return StageView{}, false
		}
		return slotView(slot, stage)
	}

	if sv, ok := checkSlot(); ok {
		return sv, nil
	}
	if sv, ok := s.lookup(waitCtx, callID, stage); ok {
		return sv, nil
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return StageView{}, ctx.Err()
			}
			s.log.Warn("output monitor timed out", "call_id", callID, "stage", stage, "timeout", s.timeout)
			return StageView{Stage: stage, Status: types.StatusFailed, Error: "timeout"}, types.ErrTimeout
		case msg, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if p, ok := realtime.DecodeStagePayload(msg.Data); ok && p.Stage == string(stage) {
				return StageView{Stage: stage, Status: p.Status, Output: p.Output, Error: p.Error}, nil
			}
		case <-slotDone:
			if sv, ok := checkSlot(); ok {
				return sv, nil
			}
			slotDone = nil
		case <-ticker.C:
			if sv, ok := checkSlot(); ok {
				return sv, nil
			}
			if sv, ok := s.lookup(waitCtx, callID, stage); ok {
				return sv, nil
			}
		}
	}
}

func (s *outputMonitorService) lookup(ctx context.Context, callID string, stage types.Stage) (StageView, bool) {
	rec, err := s.records.GetByID(dbctx.New(ctx), types.RecordKey(callID, stage))
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) && ctx.Err() == nil {
			s.log.Warn("output monitor lookup failed", "call_id", callID, "stage", stage, "error", err)
		}
		return StageView{}, false
	}
	return stageViewFromRecord(rec), true
}
