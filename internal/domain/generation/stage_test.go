package generation

import (
	"errors"
	"testing"
)

func TestRecordKeyAndEventName(t *testing.T) {
	if got := RecordKey("abc", StageBaselinePrompt); got != "abc-baseline_prompt" {
		t.Fatalf("got %q", got)
	}
	if got := StageChallengerOutput.EventName(); got != "challenger_output_event" {
		t.Fatalf("got %q", got)
	}
}

func TestUpstreamOnlyForDerived(t *testing.T) {
	for _, s := range DerivedStages {
		up, ok := s.Upstream()
		if !ok || !up.Primary() {
			t.Fatalf("%s should have a primary upstream, got %q", s, up)
		}
	}
	for _, s := range PrimaryStages {
		if _, ok := s.Upstream(); ok {
			t.Fatalf("%s must not have an upstream", s)
		}
	}
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage(" Baseline_Output ")
	if err != nil || s != StageBaselineOutput {
		t.Fatalf("got %q err=%v", s, err)
	}
	if _, err := ParseStage("o1_prompt"); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
}

func TestParseGrade(t *testing.T) {
	cases := map[string]Grade{
		"left":     GradeLeft,
		"output-1": GradeLeft,
		"RIGHT":    GradeRight,
		"output-2": GradeRight,
		"tie":      GradeTie,
	}
	for in, want := range cases {
		got, err := ParseGrade(in)
		if err != nil || got != want {
			t.Fatalf("ParseGrade(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseGrade("banana"); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}
