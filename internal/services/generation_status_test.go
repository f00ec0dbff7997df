package services

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
)

func TestCheckPhases(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGenerationStatusService(env.log, env.records, env.sessions)
	ctx := context.Background()

	vs, err := svc.Check(ctx, "c1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if vs.Phase != PhasePending || vs.Stage(types.StageBaselinePrompt).Status != StagePending {
		t.Fatalf("expected pending, got %+v", vs)
	}

	env.put(t, "c1", types.StageBaselinePrompt, types.StatusSucceeded, "b", "")
	vs, _ = svc.Check(ctx, "c1")
	if vs.Phase != PhasePending {
		t.Fatalf("one primary record is still pending, got %s", vs.Phase)
	}
	if vs.Stage(types.StageBaselinePrompt).Output != "b" {
		t.Fatalf("partial record should be carried")
	}

	env.put(t, "c1", types.StageChallengerPrompt, types.StatusSucceeded, "c", "")
	vs, _ = svc.Check(ctx, "c1")
	if vs.Phase != PhaseStage1Ready {
		t.Fatalf("expected stage1_ready, got %s", vs.Phase)
	}

	env.put(t, "c1", types.StageBaselineOutput, types.StatusSucceeded, "bo", "")
	env.put(t, "c1", types.StageChallengerOutput, types.StatusSucceeded, "co", "")
	vs, _ = svc.Check(ctx, "c1")
	if vs.Phase != PhaseComplete || !vs.AllTerminal(types.AllStages()) {
		t.Fatalf("expected complete, got %+v", vs)
	}
}

func TestCheckFailedRecord(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGenerationStatusService(env.log, env.records, env.sessions)
	env.put(t, "c2", types.StageBaselinePrompt, types.StatusFailed, "", "timeout")

	vs, err := svc.Check(context.Background(), "c2")
	if err != nil {
		t.Fatal(err)
	}
	if vs.Phase != PhaseFailed {
		t.Fatalf("expected failed, got %s", vs.Phase)
	}
	if sv := vs.Stage(types.StageBaselinePrompt); !sv.Failed() || sv.Error != "timeout" {
		t.Fatalf("failed view not carried: %+v", sv)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGenerationStatusService(env.log, env.records, env.sessions)
	env.put(t, "c3", types.StageBaselinePrompt, types.StatusSucceeded, "b", "")

	first, _ := svc.Check(context.Background(), "c3")
	for i := 0; i < 10; i++ {
		again, err := svc.Check(context.Background(), "c3")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("check %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestCheckMissingCallID(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGenerationStatusService(env.log, env.records, env.sessions)
	_, err := svc.Check(context.Background(), "  ")
	ae, ok := apierr.As(err)
	if !ok || ae.Status != http.StatusBadRequest || ae.Code != "missing_parameter" {
		t.Fatalf("expected 400 missing_parameter, got %v", err)
	}
	if !errors.Is(err, types.ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter in chain")
	}
}

func TestCheckUsesResolvedSlots(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGenerationStatusService(env.log, env.records, env.sessions)
	env.sessions.BeginCall("sid", "c4")
	slot, _ := env.sessions.SlotFor("c4", types.StageBaselinePrompt)
	slot.Resolve("from-slot")
	slot2, _ := env.sessions.SlotFor("c4", types.StageChallengerPrompt)
	slot2.Reject(errors.New("upstream stage failed"))

	vs, err := svc.Check(context.Background(), "c4")
	if err != nil {
		t.Fatal(err)
	}
	if vs.Stage(types.StageBaselinePrompt).Output != "from-slot" {
		t.Fatalf("slot value not used")
	}
	if !vs.Stage(types.StageChallengerPrompt).Failed() || vs.Phase != PhaseFailed {
		t.Fatalf("rejected slot should fail the call: %+v", vs)
	}
}

func TestStageViewPendingAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGenerationStatusService(env.log, env.records, env.sessions)
	sv, err := svc.StageView(context.Background(), "c5", types.StageBaselineOutput)
	if err != nil || sv.Status != StagePending {
		t.Fatalf("expected pending, got %+v %v", sv, err)
	}
	if _, err := svc.StageView(context.Background(), "c5", types.Stage("nope")); !errors.Is(err, types.ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
	env.put(t, "c5", types.StageBaselineOutput, types.StatusSucceeded, "done", "")
	sv, _ = svc.StageView(context.Background(), "c5", types.StageBaselineOutput)
	if sv.Output != "done" {
		t.Fatalf("got %+v", sv)
	}
}
