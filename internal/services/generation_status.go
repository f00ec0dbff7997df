package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yungbote/prompt-battle/internal/data/repos"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/session"
)

// GenerationStatusService answers "how far is call X". Every method is a pure
// read; nothing here advances the pipeline.
type GenerationStatusService interface {
	Check(ctx context.Context, callID string) (ViewState, error)
	StageView(ctx context.Context, callID string, stage types.Stage) (StageView, error)
}

type generationStatusService struct {
	log      *logger.Logger
	records  repos.GenerationRecordRepo
	sessions *session.Store
}

func NewGenerationStatusService(baseLog *logger.Logger, records repos.GenerationRecordRepo, sessions *session.Store) GenerationStatusService {
	return &generationStatusService{
		log:      baseLog.With("service", "GenerationStatusService"),
		records:  records,
		sessions: sessions,
	}
}

func requireCallID(callID string) (string, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return "", apierr.New(http.StatusBadRequest, "missing_parameter", types.ErrMissingParameter)
	}
	return callID, nil
}

func (s *generationStatusService) Check(ctx context.Context, callID string) (ViewState, error) {
	callID, err := requireCallID(callID)
	if err != nil {
		return ViewState{}, err
	}

	stages := make(map[types.Stage]StageView, len(types.AllStages()))
	var missing []string
	for _, st := range types.AllStages() {
		if sv, ok := s.fromSlot(callID, st); ok {
			stages[st] = sv
			continue
		}
		missing = append(missing, types.RecordKey(callID, st))
	}

	if len(missing) > 0 {
		recs, err := s.records.GetByIDs(dbctx.New(ctx), missing)
		if err != nil {
			s.log.Error("status lookup failed", "call_id", callID, "error", err)
			return ViewState{}, apierr.New(http.StatusInternalServerError, "status_lookup_failed", err)
		}
		for _, rec := range recs {
			stages[rec.StageName()] = stageViewFromRecord(rec)
		}
	}
	return classify(callID, stages), nil
}

func (s *generationStatusService) StageView(ctx context.Context, callID string, stage types.Stage) (StageView, error) {
	callID, err := requireCallID(callID)
	if err != nil {
		return StageView{}, err
	}
	if !stage.Valid() {
		return StageView{}, apierr.New(http.StatusBadRequest, "invalid_stage", types.ErrInvalidStage)
	}
	if sv, ok := s.fromSlot(callID, stage); ok {
		return sv, nil
	}
	rec, err := s.records.GetByID(dbctx.New(ctx), types.RecordKey(callID, stage))
	if errors.Is(err, types.ErrNotFound) {
		return StageView{Stage: stage, Status: StagePending}, nil
	}
	if err != nil {
		return StageView{}, apierr.New(http.StatusInternalServerError, "status_lookup_failed", err)
	}
	return stageViewFromRecord(rec), nil
}

// fromSlot reads a completed session slot. Slots are resolved only after the
// record is persisted, so a hit always agrees with the store.
func (s *generationStatusService) fromSlot(callID string, stage types.Stage) (StageView, bool) {
	if s.sessions == nil {
		return StageView{}, false
	}
	slot, ok := s.sessions.SlotFor(callID, stage)
	if !ok {
		return StageView{}, false
	}
	return slotView(slot, stage)
}

func slotView(slot *session.Slot, stage types.Stage) (StageView, bool) {
	out, err, done := slot.Peek()
	if !done {
		return StageView{}, false
	}
	if err != nil {
		return StageView{Stage: stage, Status: types.StatusFailed, Error: err.Error()}, true
	}
	return StageView{Stage: stage, Status: types.StatusSucceeded, Output: out}, true
}
