package generation

import (
	"fmt"
	"strings"
)

// Stage names one unit of generation work for a call.
type Stage string

const (
	StageBaselinePrompt   Stage = "baseline_prompt"
	StageChallengerPrompt Stage = "challenger_prompt"
	StageBaselineOutput   Stage = "baseline_output"
	StageChallengerOutput Stage = "challenger_output"
)

var (
	// PrimaryStages are the competing prompt generations (stage set 1).
	PrimaryStages = []Stage{StageBaselinePrompt, StageChallengerPrompt}
	// DerivedStages each consume one primary output (stage set 2).
	DerivedStages = []Stage{StageBaselineOutput, StageChallengerOutput}
)

var upstream = map[Stage]Stage{
	StageBaselineOutput:   StageBaselinePrompt,
	StageChallengerOutput: StageChallengerPrompt,
}

// AllStages lists primary stages first, then derived ones.
func AllStages() []Stage {
	out := make([]Stage, 0, len(PrimaryStages)+len(DerivedStages))
	out = append(out, PrimaryStages...)
	return append(out, DerivedStages...)
}

func (s Stage) String() string { return string(s) }

func (s Stage) Valid() bool {
	for _, st := range AllStages() {
		if st == s {
			return true
		}
	}
	return false
}

func (s Stage) Primary() bool {
	for _, st := range PrimaryStages {
		if st == s {
			return true
		}
	}
	return false
}

// Upstream returns the primary stage whose output feeds s.
func (s Stage) Upstream() (Stage, bool) {
	u, ok := upstream[s]
	return u, ok
}

func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.TrimSpace(strings.ToLower(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
	}
	return s, nil
}

// RecordKey is the composite store key for a call's stage.
func RecordKey(callID string, stage Stage) string {
	return callID + "-" + string(stage)
}

// EventName is the SSE event emitted when stage completes.
func (s Stage) EventName() string {
	return string(s) + "_event"
}
