package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDummyOutputFormat(t *testing.T) {
	d := &Dummy{}
	out, err := d.Generate(context.Background(), Request{
		System: "You are an AI prompt engineer",
		User:   "summarize a contract",
		Model:  "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(out, "dummy_gpt-4o-mini_output_You are an_summarize ") {
		t.Fatalf("unexpected output %q", out)
	}

	other, _ := d.Generate(context.Background(), Request{User: "summarize a contract", Model: "gpt-4o-mini"})
	if other == out {
		t.Fatalf("different system prompts must give different outputs")
	}
	same, _ := d.Generate(context.Background(), Request{User: "summarize a contract", Model: "gpt-4o-mini"})
	if same != other {
		t.Fatalf("dummy must be deterministic")
	}
}

func TestDummyHonorsContextDuringDelay(t *testing.T) {
	d := &Dummy{Delay: FixedDelay(time.Hour)}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := d.Generate(ctx, Request{User: "x"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDummyFailHook(t *testing.T) {
	boom := errors.New("boom")
	d := &Dummy{Fail: func(Request) error { return boom }}
	if _, err := d.Generate(context.Background(), Request{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestTruncateIsRuneSafe(t *testing.T) {
	if got := truncate("héllo wörld", 4); got != "héll" {
		t.Fatalf("got %q", got)
	}
}

type countingClient struct{ n atomic.Int32 }

func (c *countingClient) Generate(ctx context.Context, req Request) (string, error) {
	c.n.Add(1)
	return "ok", nil
}

func TestRateLimitedPassesThroughWithinBurst(t *testing.T) {
	inner := &countingClient{}
	rl := NewRateLimited(inner, 60)
	for i := 0; i < 5; i++ {
		if _, err := rl.Generate(context.Background(), Request{Model: "m"}); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if inner.n.Load() != 5 {
		t.Fatalf("expected 5 calls, got %d", inner.n.Load())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rl.Generate(ctx, Request{Model: "m"}); err == nil {
		t.Fatalf("exhausted limiter with canceled ctx should fail")
	}
}

func TestNewSelectsProvider(t *testing.T) {
	if _, err := New(Settings{Provider: "dummy"}); err != nil {
		t.Fatalf("dummy: %v", err)
	}
	if _, err := New(Settings{Provider: "openai"}); err == nil {
		t.Fatalf("openai without key should fail")
	}
	if _, err := New(Settings{Provider: "anthropic-ish"}); err == nil {
		t.Fatalf("unknown provider should fail")
	}
	if !isO1("o1-preview") || isO1("gpt-4o-mini") {
		t.Fatalf("isO1 misclassified")
	}
}
