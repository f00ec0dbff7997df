package services

import (
	types "github.com/yungbote/prompt-battle/internal/domain"
)

// Phase classifies how far the pipeline of one call has progressed.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseStage1Ready Phase = "stage1_ready"
	PhaseComplete    Phase = "complete"
	PhaseFailed      Phase = "failed"
)

const StagePending = "pending"

// StageView is what is currently known about one stage.
type StageView struct {
	Stage  types.Stage `json:"stage"`
	Status string      `json:"status"`
	Output string      `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (v StageView) Succeeded() bool { return v.Status == types.StatusSucceeded }
func (v StageView) Failed() bool    { return v.Status == types.StatusFailed }
func (v StageView) Terminal() bool  { return v.Succeeded() || v.Failed() }

func stageViewFromRecord(rec *types.GenerationRecord) StageView {
	return StageView{
		Stage:  rec.StageName(),
		Status: rec.Status,
		Output: rec.Output,
		Error:  rec.Error,
	}
}

// ViewState is the poller's classification of a call plus every stage view.
type ViewState struct {
	CallID string                    `json:"call_id"`
	Phase  Phase                     `json:"phase"`
	Stages map[types.Stage]StageView `json:"stages"`
}

// PendingView is the state of a call that was just accepted.
func PendingView(callID string) ViewState {
	return ViewState{CallID: callID, Phase: PhasePending, Stages: map[types.Stage]StageView{}}
}

// Stage returns the view of st, pending when unknown.
func (v ViewState) Stage(st types.Stage) StageView {
	if sv, ok := v.Stages[st]; ok {
		return sv
	}
	return StageView{Stage: st, Status: StagePending}
}

// AllTerminal reports whether every stage in stages has a record.
func (v ViewState) AllTerminal(stages []types.Stage) bool {
	for _, st := range stages {
		if !v.Stage(st).Terminal() {
			return false
		}
	}
	return true
}

// classify derives the phase from the stage views.
func classify(callID string, stages map[types.Stage]StageView) ViewState {
	vs := ViewState{CallID: callID, Stages: stages}
	failed := false
	for _, sv := range stages {
		if sv.Failed() {
			failed = true
		}
	}
	allSucceeded := func(set []types.Stage) bool {
		for _, st := range set {
			if !vs.Stage(st).Succeeded() {
				return false
			}
		}
		return true
	}
	switch {
	case failed:
		vs.Phase = PhaseFailed
	case allSucceeded(types.AllStages()):
		vs.Phase = PhaseComplete
	case allSucceeded(types.PrimaryStages):
		vs.Phase = PhaseStage1Ready
	default:
		vs.Phase = PhasePending
	}
	return vs
}
