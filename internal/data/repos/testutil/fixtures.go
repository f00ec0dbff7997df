package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/prompt-battle/internal/domain"
)

func SeedRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, callID string, stage types.Stage, output string) *types.GenerationRecord {
	tb.Helper()
	rec := &types.GenerationRecord{
		ID:        types.RecordKey(callID, stage),
		CallID:    callID,
		Stage:     string(stage),
		Status:    types.StatusSucceeded,
		Input:     "task",
		Output:    output,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed record: %v", err)
	}
	return rec
}

func PtrString(v string) *string { return &v }
