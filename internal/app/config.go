package app

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/prompt-battle/internal/observability"
	"github.com/yungbote/prompt-battle/internal/platform/envutil"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

type Config struct {
	Port        string
	LogMode     string
	CORSOrigins []string

	DBDriver    string
	SQLitePath  string
	PostgresDSN string

	RedisAddr    string
	RedisChannel string

	LLMProvider       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	PromptModel       string
	OutputModel       string
	DummyDelay        time.Duration
	LLMRequestsPerMin int
	PromptsFile       string

	WorkerConcurrency int
	WorkerQueueSize   int
	StageTimeout      time.Duration

	PollInterval   time.Duration
	MonitorTimeout time.Duration

	SessionTTL    time.Duration
	SessionSecret string
	SecureCookies bool
	MaxInputChars int

	RecordRetention        time.Duration
	RetentionSweepInterval time.Duration

	Otel observability.OtelConfig
}

// LoadDotEnv reads path into the process environment when it exists. Values
// already set in the environment win.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return godotenv.Load(path)
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		LogMode:     envutil.String("LOG_MODE", "development"),
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		DBDriver:    envutil.String("DB_DRIVER", "sqlite"),
		SQLitePath:  envutil.String("SQLITE_PATH", "prompt_battle.db"),
		PostgresDSN: envutil.String("POSTGRES_DSN", ""),

		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", ""),

		LLMProvider:       envutil.String("LLM_PROVIDER", "dummy"),
		OpenAIAPIKey:      envutil.String("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     envutil.String("OPENAI_BASE_URL", ""),
		PromptModel:       envutil.String("PROMPT_MODEL", "gpt-4o-mini"),
		OutputModel:       envutil.String("OUTPUT_MODEL", "gpt-4o-mini"),
		DummyDelay:        envutil.Duration("DUMMY_LLM_DELAY", 2*time.Second),
		LLMRequestsPerMin: envutil.Int("LLM_REQUESTS_PER_MINUTE", 0),
		PromptsFile:       envutil.String("PROMPTS_FILE", ""),

		WorkerConcurrency: envutil.Int("WORKER_CONCURRENCY", 4),
		WorkerQueueSize:   envutil.Int("WORKER_QUEUE_SIZE", 64),
		StageTimeout:      envutil.Duration("STAGE_TIMEOUT", 2*time.Minute),

		PollInterval:   envutil.Duration("POLL_INTERVAL", 500*time.Millisecond),
		MonitorTimeout: envutil.Duration("MONITOR_TIMEOUT", 3*time.Minute),

		SessionTTL:    envutil.Duration("SESSION_TTL", 24*time.Hour),
		SessionSecret: envutil.String("SESSION_SECRET", ""),
		SecureCookies: envutil.Bool("SESSION_SECURE_COOKIE", false),
		MaxInputChars: envutil.Int("MAX_INPUT_CHARS", 4000),

		RecordRetention:        envutil.Duration("RECORD_RETENTION", 0),
		RetentionSweepInterval: envutil.Duration("RETENTION_SWEEP_INTERVAL", time.Hour),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "prompt-battle"),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("LOG_MODE", "development")),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envFloat("OTEL_SAMPLER_RATIO", 1),
		},
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		if log != nil {
			log.Warn("SESSION_SECRET not set; sessions will not survive a restart")
		}
	}
	if strings.EqualFold(cfg.LLMProvider, "openai") && cfg.OpenAIAPIKey == "" && log != nil {
		log.Warn("LLM_PROVIDER=openai without OPENAI_API_KEY")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envFloat(name string, def float64) float64 {
	v := envutil.String(name, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "prompt-battle-dev-secret"
	}
	return hex.EncodeToString(b)
}
