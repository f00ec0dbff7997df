package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/jobs/runtime"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/session"
)

// JobSubmitter accepts work without blocking.
type JobSubmitter interface {
	Submit(job *runtime.Job) error
}

type SubmissionService interface {
	// Submit mints a call id, registers it with the session and hands the task
	// to the worker. It returns before any generation runs.
	Submit(ctx context.Context, sessionID, task string) (string, error)
}

type submissionService struct {
	log           *logger.Logger
	jobs          JobSubmitter
	sessions      *session.Store
	maxInputChars int
}

func NewSubmissionService(baseLog *logger.Logger, jobs JobSubmitter, sessions *session.Store, maxInputChars int) SubmissionService {
	return &submissionService{
		log:           baseLog.With("service", "SubmissionService"),
		jobs:          jobs,
		sessions:      sessions,
		maxInputChars: maxInputChars,
	}
}

func (s *submissionService) Submit(ctx context.Context, sessionID, task string) (string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return "", apierr.New(http.StatusBadRequest, "missing_parameter", fmt.Errorf("%w: user_input", types.ErrMissingParameter))
	}
	if s.maxInputChars > 0 && utf8.RuneCountInString(task) > s.maxInputChars {
		return "", apierr.New(http.StatusBadRequest, "input_too_long", fmt.Errorf("user_input exceeds %d characters", s.maxInputChars))
	}

	callID := uuid.NewString()
	if s.sessions != nil {
		s.sessions.ReserveCall(sessionID, callID)
	}
	job := runtime.NewJob(ctx, types.JobTypePromptBattle, callID, sessionID, map[string]any{
		types.PayloadTask: task,
	})
	if err := s.jobs.Submit(job); err != nil {
		if s.sessions != nil {
			s.sessions.ReleaseCall(sessionID, callID)
		}
		if errors.Is(err, types.ErrQueueFull) {
			return "", apierr.New(http.StatusServiceUnavailable, "queue_full", err)
		}
		return "", apierr.New(http.StatusInternalServerError, "submit_failed", err)
	}
	if s.sessions != nil {
		s.sessions.BeginCall(sessionID, callID)
	}
	s.log.Info("generation submitted", "call_id", callID, "session_id", sessionID, "input_chars", len(task))
	return callID, nil
}
