package prompts

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/prompt-battle/internal/domain"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// Model roles a stage can be bound to. The concrete model names come from config.
const (
	ModelPrompt = "prompt"
	ModelOutput = "output"
)

// Input carries every field a stage template may reference.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	Task   string
	Prompt string
}

// Prompt is a rendered request ready for the llm client.
type Prompt struct {
	Name   string
	Model  string
	System string
	User   string
}

func (p Prompt) Fingerprint() string {
	h := sha256.Sum256([]byte(
		strings.TrimSpace(p.Name) + "|" +
			strings.TrimSpace(p.System) + "|" +
			strings.TrimSpace(p.User),
	))
	return hex.EncodeToString(h[:])
}

// Spec is the declaration format of one stage in the YAML catalog.
type Spec struct {
	Name   string `yaml:"name"`
	Model  string `yaml:"model"`
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type file struct {
	Version int             `yaml:"version"`
	Stages  map[string]Spec `yaml:"stages"`
}

type compiled struct {
	spec   Spec
	system *template.Template
	user   *template.Template
}

// Catalog maps every stage to its compiled templates.
type Catalog struct {
	stages map[types.Stage]compiled
}

// Load reads the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	raw := defaultCatalog
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	c := &Catalog{stages: make(map[types.Stage]compiled, len(f.Stages))}
	for key, s := range f.Stages {
		stage, err := types.ParseStage(key)
		if err != nil {
			return nil, fmt.Errorf("prompts: %w", err)
		}
		cs, err := compile(stage, s)
		if err != nil {
			return nil, err
		}
		c.stages[stage] = cs
	}
	for _, st := range types.AllStages() {
		if _, ok := c.stages[st]; !ok {
			return nil, fmt.Errorf("prompts: stage %s missing", st)
		}
	}
	return c, nil
}

func compile(stage types.Stage, s Spec) (compiled, error) {
	switch s.Model {
	case ModelPrompt, ModelOutput:
	default:
		return compiled{}, fmt.Errorf("prompts: stage %s has invalid model role %q", stage, s.Model)
	}
	if strings.TrimSpace(s.User) == "" {
		return compiled{}, fmt.Errorf("prompts: stage %s has empty user template", stage)
	}
	if strings.TrimSpace(s.Name) == "" {
		s.Name = string(stage)
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return compiled{}, fmt.Errorf("%s system template parse: %w", stage, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return compiled{}, fmt.Errorf("%s user template parse: %w", stage, err)
	}
	return compiled{spec: s, system: sysT, user: userT}, nil
}

// Build renders the prompt for stage. models maps a role to a concrete model name.
func (c *Catalog) Build(stage types.Stage, in Input, models map[string]string) (Prompt, error) {
	cs, ok := c.stages[stage]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt stage: %s", stage)
	}
	model := models[cs.spec.Model]
	if model == "" {
		return Prompt{}, fmt.Errorf("no model configured for role %s", cs.spec.Model)
	}
	return Prompt{
		Name:   cs.spec.Name,
		Model:  model,
		System: render(cs.system, in),
		User:   render(cs.user, in),
	}, nil
}

func render(t *template.Template, in Input) string {
	var b bytes.Buffer
	_ = t.Execute(&b, in)
	return strings.TrimSpace(b.String())
}
