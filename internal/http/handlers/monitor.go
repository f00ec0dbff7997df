package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/http/response"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/presentation"
	"github.com/yungbote/prompt-battle/internal/services"
)

type MonitorHandler struct {
	log       *logger.Logger
	monitor   services.OutputMonitorService
	assembler *presentation.Assembler
}

func NewMonitorHandler(log *logger.Logger, monitor services.OutputMonitorService, assembler *presentation.Assembler) *MonitorHandler {
	return &MonitorHandler{
		log:       log.With("handler", "MonitorHandler"),
		monitor:   monitor,
		assembler: assembler,
	}
}

// GET /sse_output_monitor/:stage?call_id=
//
// Emits exactly one {stage}_event once the stage has a record, then closes.
func (h *MonitorHandler) OutputMonitor(c *gin.Context) {
	stage, err := types.ParseStage(c.Param("stage"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_stage", err)
		return
	}
	callID := strings.TrimSpace(c.Query("call_id"))
	if callID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_parameter", types.ErrMissingParameter)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	sv, err := h.monitor.Await(ctx, callID, stage)
	switch {
	case err == nil, errors.Is(err, types.ErrTimeout):
	case ctx.Err() != nil:
		h.log.Debug("output monitor client gone", "call_id", callID, "stage", stage)
		return
	default:
		h.log.Error("output monitor failed", "call_id", callID, "stage", stage, "error", err)
		sv = services.StageView{Stage: stage, Status: types.StatusFailed, Error: "monitor error"}
	}

	if response.WantsJSON(c) || c.Query("format") == "json" {
		c.SSEvent(stage.EventName(), sv)
	} else {
		c.SSEvent(stage.EventName(), string(h.assembler.StageEvent(sv).HTML))
	}
	c.Writer.Flush()
}
