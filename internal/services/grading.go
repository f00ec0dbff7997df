package services

import (
	"context"
	"net/http"

	"github.com/yungbote/prompt-battle/internal/data/repos"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/session"
)

type GradingService interface {
	// Grade records which primary output of the session's latest call won.
	Grade(ctx context.Context, sessionID, selection string) (*types.GradeRecord, error)
	History(ctx context.Context, sessionID string) ([]types.GradeRecord, error)
}

type gradingService struct {
	log      *logger.Logger
	grades   repos.GradeRecordRepo
	sessions *session.Store
}

func NewGradingService(baseLog *logger.Logger, grades repos.GradeRecordRepo, sessions *session.Store) GradingService {
	return &gradingService{
		log:      baseLog.With("service", "GradingService"),
		grades:   grades,
		sessions: sessions,
	}
}

func (s *gradingService) Grade(ctx context.Context, sessionID, selection string) (*types.GradeRecord, error) {
	grade, err := types.ParseGrade(selection)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_selection", err)
	}
	noActive := apierr.New(http.StatusConflict, "no_active_generation", types.ErrNoActiveGeneration)

	sess, ok := s.sessions.Lookup(sessionID)
	if !ok {
		return nil, noActive
	}
	callID := sess.LatestCallID()
	if callID == "" {
		return nil, noActive
	}
	outputs := make([]string, 0, len(types.PrimaryStages))
	for _, st := range types.PrimaryStages {
		slot, ok := sess.Slot(callID, st)
		if !ok {
			return nil, noActive
		}
		out, slotErr, done := slot.Peek()
		if !done || slotErr != nil {
			return nil, noActive
		}
		outputs = append(outputs, out)
	}

	rec := &types.GradeRecord{
		CallID:    callID,
		SessionID: sess.ID,
		Grade:     grade,
		Output1:   outputs[0],
		Output2:   outputs[1],
	}
	if err := s.grades.Create(dbctx.New(ctx), rec); err != nil {
		s.log.Error("persist grade failed", "call_id", callID, "session_id", sess.ID, "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "grade_persist_failed", err)
	}
	sess.AppendGrade(*rec)
	s.log.Info("grade recorded", "call_id", callID, "session_id", sess.ID, "grade", grade)
	return rec, nil
}

// History prefers the live session; after expiry it falls back to the table.
func (s *gradingService) History(ctx context.Context, sessionID string) ([]types.GradeRecord, error) {
	if sess, ok := s.sessions.Lookup(sessionID); ok {
		if hist := sess.Grades(); len(hist) > 0 {
			return hist, nil
		}
	}
	if sessionID == "" {
		return []types.GradeRecord{}, nil
	}
	rows, err := s.grades.ListBySession(dbctx.New(ctx), sessionID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "grade_history_failed", err)
	}
	out := make([]types.GradeRecord, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

