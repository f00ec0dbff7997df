package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is one prompt sent to a model.
type Request struct {
	System string
	User   string
	Model  string
}

// Client is the prompt-generation collaborator. Calls may take seconds and may
// fail; callers bound them with the context deadline.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

const (
	ProviderDummy  = "dummy"
	ProviderOpenAI = "openai"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider          string
	APIKey            string
	BaseURL           string
	DummyDelay        DelayFunc
	RequestsPerMinute int
}

// New builds the configured client, wrapped with rate limiting and tracing.
func New(s Settings) (Client, error) {
	var base Client
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderDummy:
		base = &Dummy{Delay: s.DummyDelay}
	case ProviderOpenAI:
		c, err := NewOpenAI(s.APIKey, s.BaseURL)
		if err != nil {
			return nil, err
		}
		base = c
	default:
		return nil, fmt.Errorf("llm provider %q not supported", s.Provider)
	}
	if s.RequestsPerMinute > 0 {
		base = NewRateLimited(base, s.RequestsPerMinute)
	}
	return NewTraced(base, s.Provider), nil
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
