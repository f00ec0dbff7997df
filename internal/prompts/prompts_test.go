package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	types "github.com/yungbote/prompt-battle/internal/domain"
)

var testModels = map[string]string{ModelPrompt: "gpt-4o-mini", ModelOutput: "gpt-4o-mini"}

func TestDefaultCatalogCoversAllStages(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, st := range types.AllStages() {
		if _, err := c.Build(st, Input{Task: "t", Prompt: "p"}, testModels); err != nil {
			t.Fatalf("Build(%s): %v", st, err)
		}
	}
}

func TestChallengerPromptEmbedsTask(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p, err := c.Build(types.StageChallengerPrompt, Input{Task: "summarize a contract"}, testModels)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, "<task>\nsummarize a contract\n</task>") {
		t.Fatalf("task not embedded:\n%s", p.User)
	}
	if !strings.HasPrefix(p.System, "You are an AI prompt engineer") {
		t.Fatalf("unexpected system prompt: %q", p.System)
	}

	base, _ := c.Build(types.StageBaselinePrompt, Input{Task: "summarize a contract"}, testModels)
	if base.System != "" || base.User != "summarize a contract" {
		t.Fatalf("baseline should pass the task through: %+v", base)
	}
	if base.Fingerprint() == p.Fingerprint() {
		t.Fatalf("fingerprints should differ")
	}
}

func TestDerivedStageUsesUpstreamPrompt(t *testing.T) {
	c, _ := Load("")
	p, err := c.Build(types.StageBaselineOutput, Input{Task: "ignored", Prompt: "do the thing"}, testModels)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.User != "do the thing" {
		t.Fatalf("got %q", p.User)
	}
}

func TestLoadFromFileRejectsIncompleteCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	body := "stages:\n  baseline_prompt:\n    model: prompt\n    user: \"{{.Task}}\"\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected missing stage error")
	}
}

func TestParseRejectsUnknownStageAndRole(t *testing.T) {
	if _, err := Parse([]byte("stages:\n  nope:\n    model: prompt\n    user: x\n")); err == nil {
		t.Fatalf("expected unknown stage error")
	}
	if _, err := Parse([]byte("stages:\n  baseline_prompt:\n    model: huge\n    user: x\n")); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestBuildRequiresModel(t *testing.T) {
	c, _ := Load("")
	if _, err := c.Build(types.StageBaselinePrompt, Input{Task: "x"}, map[string]string{}); err == nil {
		t.Fatalf("expected missing model error")
	}
}
