package services

import (
	"context"
	"testing"
	"time"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
)

func TestRetentionSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	old := &types.GenerationRecord{
		ID: "old-baseline_prompt", CallID: "old", Stage: string(types.StageBaselinePrompt),
		Status: types.StatusSucceeded, CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	if err := env.records.Create(dbctx.New(ctx), old); err != nil {
		t.Fatal(err)
	}
	env.put(t, "new", types.StageBaselinePrompt, types.StatusSucceeded, "x", "")

	off := NewRetentionService(env.log, env.records, 0, time.Minute)
	if n, err := off.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("disabled sweep deleted %d (%v)", n, err)
	}

	svc := NewRetentionService(env.log, env.records, 24*time.Hour, time.Minute)
	n, err := svc.Sweep(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Sweep = %d %v", n, err)
	}
	if _, err := env.records.GetByID(dbctx.New(ctx), "new-baseline_prompt"); err != nil {
		t.Fatalf("fresh record deleted: %v", err)
	}
}
