package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/prompt-battle/internal/data/repos/testutil"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
)

func TestGenerationRecordRepo(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.New(ctx)
	repo := NewGenerationRecordRepo(gdb, testutil.Logger(t))

	callID := uuid.New().String()
	rec := &types.GenerationRecord{
		ID:        types.RecordKey(callID, types.StageBaselinePrompt),
		CallID:    callID,
		SessionID: testutil.PtrString("sess-1"),
		Stage:     string(types.StageBaselinePrompt),
		Status:    types.StatusSucceeded,
		Input:     "summarize a contract",
		Output:    "prompt text",
	}
	if err := repo.Create(dbc, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatalf("Create should stamp created_at")
	}

	got, err := repo.GetByID(dbc, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Output != "prompt text" || got.SessionID == nil || *got.SessionID != "sess-1" {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Duplicate writes are rejected and leave the original untouched.
	dup := *rec
	dup.Output = "overwritten"
	dup.CreatedAt = time.Time{}
	if err := repo.Create(dbc, &dup); !errors.Is(err, types.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	again, _ := repo.GetByID(dbc, rec.ID)
	if again.Output != "prompt text" {
		t.Fatalf("duplicate write mutated record: %q", again.Output)
	}

	if _, err := repo.GetByID(dbc, types.RecordKey(callID, types.StageChallengerPrompt)); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rows, err := repo.GetByIDs(dbc, []string{
		types.RecordKey(callID, types.StageBaselinePrompt),
		types.RecordKey(callID, types.StageChallengerPrompt),
	})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	list, err := repo.ListByCallID(dbc, callID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByCallID: err=%v len=%d", err, len(list))
	}
}

func TestGenerationRecordRepoRejectsEmptyID(t *testing.T) {
	repo := NewGenerationRecordRepo(testutil.DB(t), testutil.Logger(t))
	if err := repo.Create(dbctx.New(context.Background()), &types.GenerationRecord{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestGenerationRecordRepoConcurrentWritersDisjointKeys(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewGenerationRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		callID := uuid.New().String()
		for _, stage := range types.PrimaryStages {
			wg.Add(1)
			go func(callID string, stage types.Stage) {
				defer wg.Done()
				errs <- repo.Create(dbc, &types.GenerationRecord{
					ID:     types.RecordKey(callID, stage),
					CallID: callID,
					Stage:  string(stage),
					Status: types.StatusSucceeded,
				})
			}(callID, stage)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Create: %v", err)
		}
	}
}

func TestGenerationRecordRepoDeleteOlderThan(t *testing.T) {
	gdb := testutil.DB(t)
	repo := NewGenerationRecordRepo(gdb, testutil.Logger(t))
	dbc := dbctx.New(context.Background())
	now := time.Now().UTC()

	old := &types.GenerationRecord{ID: "old-baseline_prompt", CallID: "old", Stage: "baseline_prompt", Status: types.StatusSucceeded, CreatedAt: now.Add(-48 * time.Hour)}
	fresh := &types.GenerationRecord{ID: "new-baseline_prompt", CallID: "new", Stage: "baseline_prompt", Status: types.StatusSucceeded, CreatedAt: now}
	for _, r := range []*types.GenerationRecord{old, fresh} {
		if err := repo.Create(dbc, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	n, err := repo.DeleteOlderThan(dbc, now.Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteOlderThan: n=%d err=%v", n, err)
	}
	if _, err := repo.GetByID(dbc, fresh.ID); err != nil {
		t.Fatalf("fresh record should survive: %v", err)
	}
}

func TestGenerationRecordRepoGetByIDsSkipsMissing(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	repo := NewGenerationRecordRepo(gdb, testutil.Logger(t))

	testutil.SeedRecord(t, ctx, gdb, "c1", types.StageBaselinePrompt, "direct")
	testutil.SeedRecord(t, ctx, gdb, "c1", types.StageChallengerPrompt, "generated")

	rows, err := repo.GetByIDs(dbctx.New(ctx), []string{
		types.RecordKey("c1", types.StageBaselinePrompt),
		types.RecordKey("c1", types.StageChallengerPrompt),
		types.RecordKey("c1", types.StageBaselineOutput),
	})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want only the two stored records, got %d", len(rows))
	}
}
