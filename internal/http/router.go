package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/prompt-battle/internal/http/handlers"
	httpMW "github.com/yungbote/prompt-battle/internal/http/middleware"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	SessionMiddleware *httpMW.SessionMiddleware

	PageHandler       *httpH.PageHandler
	GenerationHandler *httpH.GenerationHandler
	GradeHandler      *httpH.GradeHandler
	MonitorHandler    *httpH.MonitorHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, "/generations", "/check_generations", "/process_additional_outputs", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	app := r.Group("/")
	{
		if cfg.SessionMiddleware != nil {
			app.Use(cfg.SessionMiddleware.Attach())
		}

		if cfg.PageHandler != nil {
			app.GET("/", cfg.PageHandler.Index)
		}

		// Generation lifecycle
		if cfg.GenerationHandler != nil {
			app.POST("/output", cfg.GenerationHandler.Submit)
			app.GET("/generations", cfg.GenerationHandler.Generations)
			app.GET("/generations/:call_id", cfg.GenerationHandler.Generations)
			app.POST("/generations/:call_id", cfg.GenerationHandler.Generations)
			app.GET("/check_generations", cfg.GenerationHandler.CheckGenerations)
			app.GET("/process_additional_outputs", cfg.GenerationHandler.ProcessAdditionalOutputs)
		}

		// Realtime (SSE)
		if cfg.MonitorHandler != nil {
			app.GET("/sse_output_monitor/:stage", cfg.MonitorHandler.OutputMonitor)
		}

		// Grading
		if cfg.GradeHandler != nil {
			app.POST("/grade_output", cfg.GradeHandler.GradeOutput)
			app.GET("/grades", cfg.GradeHandler.ListGrades)
		}
	}

	return r
}
