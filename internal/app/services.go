package app

import (
	"fmt"

	"github.com/yungbote/prompt-battle/internal/jobs/pipeline/prompt_battle"
	jobruntime "github.com/yungbote/prompt-battle/internal/jobs/runtime"
	"github.com/yungbote/prompt-battle/internal/jobs/worker"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/prompts"
	"github.com/yungbote/prompt-battle/internal/realtime"
	"github.com/yungbote/prompt-battle/internal/services"
	"github.com/yungbote/prompt-battle/internal/session"
)

type Services struct {
	Sessions *session.Store
	Catalog  *prompts.Catalog
	Emitter  services.SSEEmitter

	Submission services.SubmissionService
	Status     services.GenerationStatusService
	Monitor    services.OutputMonitorService
	Grading    services.GradingService
	Retention  services.RetentionService

	// Job infra
	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, sseHub *realtime.SSEHub, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return Services{}, fmt.Errorf("load prompt catalog: %w", err)
	}

	var emitter services.SSEEmitter
	if clients.SSEBus != nil {
		// publish through redis; the forwarder feeds every process's hub
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}

	sessions := session.NewStore(log, cfg.SessionTTL)

	registry := jobruntime.NewRegistry()
	pipe := prompt_battle.New(log, repos.Generations, clients.LLM, catalog, sessions, emitter, prompt_battle.Options{
		PromptModel:  cfg.PromptModel,
		OutputModel:  cfg.OutputModel,
		StageTimeout: cfg.StageTimeout,
	})
	if err := registry.Register(pipe); err != nil {
		return Services{}, fmt.Errorf("register %s: %w", pipe.Type(), err)
	}
	jobWorker := worker.NewWorker(log, registry, worker.Options{
		Concurrency: cfg.WorkerConcurrency,
		QueueSize:   cfg.WorkerQueueSize,
	})

	return Services{
		Sessions: sessions,
		Catalog:  catalog,
		Emitter:  emitter,

		Submission: services.NewSubmissionService(log, jobWorker, sessions, cfg.MaxInputChars),
		Status:     services.NewGenerationStatusService(log, repos.Generations, sessions),
		Monitor:    services.NewOutputMonitorService(log, sseHub, repos.Generations, sessions, 0, cfg.MonitorTimeout),
		Grading:    services.NewGradingService(log, repos.Grades, sessions),
		Retention:  services.NewRetentionService(log, repos.Generations, cfg.RecordRetention, cfg.RetentionSweepInterval),

		JobRegistry: registry,
		JobWorker:   jobWorker,
	}, nil
}
