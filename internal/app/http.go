package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/prompt-battle/internal/http"
	httpH "github.com/yungbote/prompt-battle/internal/http/handlers"
	httpMW "github.com/yungbote/prompt-battle/internal/http/middleware"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/presentation"
)

type Middleware struct {
	Session *httpMW.SessionMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Page       *httpH.PageHandler
	Generation *httpH.GenerationHandler
	Grade      *httpH.GradeHandler
	Monitor    *httpH.MonitorHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	assembler := presentation.New(cfg.PollInterval)
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Page:       httpH.NewPageHandler(log, cfg.MaxInputChars),
		Generation: httpH.NewGenerationHandler(log, services.Submission, services.Status, assembler),
		Grade:      httpH.NewGradeHandler(log, services.Grading, assembler),
		Monitor:    httpH.NewMonitorHandler(log, services.Monitor, assembler),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Session: httpMW.NewSessionMiddleware(log, cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		SessionMiddleware: middleware.Session,
		PageHandler:       handlers.Page,
		GenerationHandler: handlers.Generation,
		GradeHandler:      handlers.Grade,
		MonitorHandler:    handlers.Monitor,
		HealthHandler:     handlers.Health,
	})
}
