package app

import (
	"fmt"

	"github.com/yungbote/prompt-battle/internal/clients/llm"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/realtime/bus"
)

type Clients struct {
	LLM    llm.Client
	SSEBus bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis (optional cross-process fan-out)
	var sseBus bus.Bus
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
	}

	// LLM
	var delay llm.DelayFunc
	if cfg.DummyDelay > 0 {
		delay = llm.FixedDelay(cfg.DummyDelay)
	}
	client, err := llm.New(llm.Settings{
		Provider:          cfg.LLMProvider,
		APIKey:            cfg.OpenAIAPIKey,
		BaseURL:           cfg.OpenAIBaseURL,
		DummyDelay:        delay,
		RequestsPerMinute: cfg.LLMRequestsPerMin,
	})
	if err != nil {
		if sseBus != nil {
			_ = sseBus.Close()
		}
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}
	log.Info("LLM client ready", "provider", cfg.LLMProvider, "prompt_model", cfg.PromptModel, "output_model", cfg.OutputModel)

	return Clients{LLM: client, SSEBus: sseBus}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
}
