package bus

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/realtime"
)

func TestNewRedisBusRequiresAddr(t *testing.T) {
	if _, err := NewRedisBus(logger.NewNop(), "", ""); err == nil {
		t.Fatalf("expected missing addr error")
	}
	if _, err := NewRedisBus(nil, "localhost:6379", ""); err == nil {
		t.Fatalf("expected missing logger error")
	}
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	b, err := NewRedisBus(logger.NewNop(), addr, "test-"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan realtime.SSEMessage, 1)
	if err := b.StartForwarder(ctx, func(m realtime.SSEMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	sent := realtime.SSEMessage{
		Channel: "call-baseline_prompt",
		Event:   realtime.SSEEventStageCompleted,
		Data:    realtime.StagePayload{CallID: "call", Stage: "baseline_prompt", Status: "succeeded", Output: "out"},
	}
	if err := b.Publish(ctx, sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case m := <-got:
		p, ok := realtime.DecodeStagePayload(m.Data)
		if m.Channel != sent.Channel || !ok || p.Output != "out" {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for forwarded message")
	}
}
