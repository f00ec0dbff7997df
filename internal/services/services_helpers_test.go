package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/prompt-battle/internal/data/repos"
	"github.com/yungbote/prompt-battle/internal/data/repos/testutil"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/session"
)

type testEnv struct {
	log      *logger.Logger
	records  repos.GenerationRecordRepo
	grades   repos.GradeRecordRepo
	sessions *session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	gdb := testutil.DB(t)
	return &testEnv{
		log:      log,
		records:  repos.NewGenerationRecordRepo(gdb, log),
		grades:   repos.NewGradeRecordRepo(gdb, log),
		sessions: session.NewStore(log, time.Minute),
	}
}

func (e *testEnv) put(t *testing.T, callID string, st types.Stage, status, output, errMsg string) {
	t.Helper()
	rec := &types.GenerationRecord{
		ID:     types.RecordKey(callID, st),
		CallID: callID,
		Stage:  string(st),
		Status: status,
		Output: output,
		Error:  errMsg,
	}
	if err := e.records.Create(dbctx.New(context.Background()), rec); err != nil {
		t.Fatalf("put %s: %v", st, err)
	}
}
