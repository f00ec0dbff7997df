package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger
	// guarded by the hub mutex
	closed bool
}
