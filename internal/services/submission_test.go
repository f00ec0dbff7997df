package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/jobs/runtime"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
)

type fakeSubmitter struct {
	jobs []*runtime.Job
	err  error
}

func (f *fakeSubmitter) Submit(job *runtime.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func TestSubmitMintsCallAndEnqueues(t *testing.T) {
	env := newTestEnv(t)
	sub := &fakeSubmitter{}
	svc := NewSubmissionService(env.log, sub, env.sessions, 100)

	callID, err := svc.Submit(context.Background(), "sid", "  summarize a contract ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := uuid.Parse(callID); err != nil {
		t.Fatalf("call id is not a uuid: %q", callID)
	}
	if len(sub.jobs) != 1 {
		t.Fatalf("expected one job")
	}
	job := sub.jobs[0]
	if job.Type != types.JobTypePromptBattle || job.CallID != callID || job.Payload[types.PayloadTask] != "summarize a contract" {
		t.Fatalf("unexpected job %+v", job)
	}
	sess, _ := env.sessions.Lookup("sid")
	if sess.LatestCallID() != callID {
		t.Fatalf("session latest call not set")
	}

	status := NewGenerationStatusService(env.log, env.records, env.sessions)
	vs, err := status.Check(context.Background(), callID)
	if err != nil || vs.Phase != PhasePending {
		t.Fatalf("fresh submission must be pending, got %+v %v", vs, err)
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubmissionService(env.log, &fakeSubmitter{}, env.sessions, 5)

	_, err := svc.Submit(context.Background(), "sid", "   ")
	if !errors.Is(err, types.ErrMissingParameter) {
		t.Fatalf("empty input: got %v", err)
	}
	_, err = svc.Submit(context.Background(), "sid", strings.Repeat("é", 6))
	if ae, ok := apierr.As(err); !ok || ae.Code != "input_too_long" {
		t.Fatalf("long input: got %v", err)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubmissionService(env.log, &fakeSubmitter{err: types.ErrQueueFull}, env.sessions, 0)
	_, err := svc.Submit(context.Background(), "sid", "task")
	ae, ok := apierr.As(err)
	if !ok || ae.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}

func TestSubmitQueueFullKeepsPreviousCall(t *testing.T) {
	env := newTestEnv(t)
	sub := &fakeSubmitter{}
	svc := NewSubmissionService(env.log, sub, env.sessions, 0)

	first, err := svc.Submit(context.Background(), "sid", "task one")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for i := 0; i < 7; i++ {
		if _, err := svc.Submit(context.Background(), "sid", "filler"); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	sess, _ := env.sessions.Lookup("sid")
	latest := sess.LatestCallID()

	sub.err = types.ErrQueueFull
	if _, err := svc.Submit(context.Background(), "sid", "task two"); err == nil {
		t.Fatalf("expected queue full")
	}
	if got := sess.LatestCallID(); got != latest {
		t.Fatalf("rejected call became latest: %q", got)
	}
	if _, ok := env.sessions.SlotFor(first, types.StageBaselinePrompt); !ok {
		t.Fatalf("rejected call evicted an older call")
	}
	if len(sub.jobs) != 8 {
		t.Fatalf("expected 8 queued jobs, got %d", len(sub.jobs))
	}
}
