package bus

import (
	"context"

	"github.com/yungbote/prompt-battle/internal/realtime"
)

// Bus relays SSE messages between processes sharing one database.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
