package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prompt-battle/internal/http/response"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
	"github.com/yungbote/prompt-battle/internal/platform/ctxutil"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/presentation"
	"github.com/yungbote/prompt-battle/internal/services"
)

type GradeHandler struct {
	log       *logger.Logger
	grading   services.GradingService
	assembler *presentation.Assembler
}

func NewGradeHandler(log *logger.Logger, grading services.GradingService, assembler *presentation.Assembler) *GradeHandler {
	return &GradeHandler{
		log:       log.With("handler", "GradeHandler"),
		grading:   grading,
		assembler: assembler,
	}
}

type gradeRequest struct {
	Grade string `form:"grade" json:"grade"`
}

// POST /grade_output
func (h *GradeHandler) GradeOutput(c *gin.Context) {
	var req gradeRequest
	_ = c.ShouldBind(&req)

	ctx := c.Request.Context()
	rec, err := h.grading.Grade(ctx, ctxutil.SessionID(ctx), strings.TrimSpace(req.Grade))
	if err != nil {
		respondServiceError(c, h.assembler, presentation.GradeStatusID, err, "grade_failed")
		return
	}
	response.RespondRender(c, http.StatusOK, presentation.Render{
		Fragments: []presentation.Fragment{h.assembler.GradeAck(rec.Grade)},
		Next:      presentation.NextAction{Kind: presentation.ActionStop},
	}, rec)
}

// GET /grades
func (h *GradeHandler) ListGrades(c *gin.Context) {
	ctx := c.Request.Context()
	hist, err := h.grading.History(ctx, ctxutil.SessionID(ctx))
	if err != nil {
		if ae, ok := apierr.As(err); ok {
			response.RespondError(c, ae.Status, ae.Code, ae.Err)
			return
		}
		h.log.Error("list grades failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "grade_history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"grades": hist})
}
