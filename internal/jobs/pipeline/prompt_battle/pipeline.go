package prompt_battle

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/prompt-battle/internal/domain"
	jobrt "github.com/yungbote/prompt-battle/internal/jobs/runtime"
	"github.com/yungbote/prompt-battle/internal/prompts"
)

// Run executes stage set 1 concurrently, then chains stage set 2 once both
// stage-1 records are persisted. Every stage ends with exactly one record.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	callID := jc.Job.CallID
	if callID == "" {
		return fmt.Errorf("prompt_battle: missing call_id")
	}
	task := jc.PayloadString(types.PayloadTask)
	call := stageCall{callID: callID, sessionID: jc.Job.SessionID}

	var (
		mu      sync.Mutex
		primary = make(map[types.Stage]*types.GenerationRecord, len(types.PrimaryStages))
	)
	// Plain group: a failed stage must not cancel its sibling.
	var g errgroup.Group
	for _, st := range types.PrimaryStages {
		g.Go(func() error {
			rec, err := p.runStage(jc.Ctx, call, st, prompts.Input{Task: task}, task)
			mu.Lock()
			primary[st] = rec
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		for _, st := range types.DerivedStages {
			p.persist(jc.Ctx, p.failedRecord(call, st, "", UpstreamFailed, nil))
		}
		jc.Fail("stage_1", fmt.Errorf("%w: %s: %w", types.ErrGenerationFailed, UpstreamFailed, err))
		return nil
	}

	var g2 errgroup.Group
	for _, st := range types.DerivedStages {
		up, _ := st.Upstream()
		upstream := primary[up].Output
		g2.Go(func() error {
			_, err := p.runStage(jc.Ctx, call, st, prompts.Input{Task: task, Prompt: upstream}, upstream)
			return err
		})
	}
	if err := g2.Wait(); err != nil {
		jc.Fail("stage_2", fmt.Errorf("%w: %w", types.ErrGenerationFailed, err))
	}
	return nil
}

// OnFailure writes a failed record for every stage still missing one, so
// pollers of a crashed run terminate.
func (p *Pipeline) OnFailure(jc *jobrt.Context, err error) {
	if jc == nil || jc.Job == nil || jc.Job.CallID == "" || err == nil {
		return
	}
	call := stageCall{callID: jc.Job.CallID, sessionID: jc.Job.SessionID}
	for _, st := range types.AllStages() {
		if p.exists(jc.Ctx, call.callID, st) {
			continue
		}
		p.persist(jc.Ctx, p.failedRecord(call, st, "", err.Error(), nil))
	}
}
