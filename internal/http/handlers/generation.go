package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/http/response"
	"github.com/yungbote/prompt-battle/internal/platform/ctxutil"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/presentation"
	"github.com/yungbote/prompt-battle/internal/services"
)

const inputPlaceholder = "Describe a task for the models..."

type GenerationHandler struct {
	log       *logger.Logger
	submit    services.SubmissionService
	status    services.GenerationStatusService
	assembler *presentation.Assembler
}

func NewGenerationHandler(
	log *logger.Logger,
	submit services.SubmissionService,
	status services.GenerationStatusService,
	assembler *presentation.Assembler,
) *GenerationHandler {
	return &GenerationHandler{
		log:       log.With("handler", "GenerationHandler"),
		submit:    submit,
		status:    status,
		assembler: assembler,
	}
}

type submitRequest struct {
	UserInput string `form:"user_input" json:"user_input"`
}

// POST /output
func (h *GenerationHandler) Submit(c *gin.Context) {
	var req submitRequest
	_ = c.ShouldBind(&req)

	ctx := c.Request.Context()
	callID, err := h.submit.Submit(ctx, ctxutil.SessionID(ctx), req.UserInput)
	if err != nil {
		respondServiceError(c, h.assembler, presentation.PrimaryGroupID, err, "submit_failed")
		return
	}

	h.log.Debug("submission accepted", "call_id", callID)

	// Always pending here, however fast the worker is; polling picks up the rest.
	r := h.assembler.Assemble(services.PendingView(callID), presentation.PrimaryPanel())
	r.Fragments = append(r.Fragments, h.assembler.ClearInput(inputPlaceholder))
	response.RespondRender(c, http.StatusOK, r, gin.H{"call_id": callID})
}

// GET /generations?call_id=
// GET|POST /generations/:call_id
func (h *GenerationHandler) Generations(c *gin.Context) {
	h.renderPanel(c, presentation.PrimaryPanel(), presentation.PrimaryGroupID)
}

// GET /check_generations?call_id=
func (h *GenerationHandler) CheckGenerations(c *gin.Context) {
	h.renderPanel(c, presentation.DerivedPanel(), presentation.DerivedGroupID)
}

// GET /process_additional_outputs?box_id=&call_id=
func (h *GenerationHandler) ProcessAdditionalOutputs(c *gin.Context) {
	boxID := c.Query("box_id")
	stage, err := presentation.StageForBox(boxID)
	if err != nil {
		response.RespondErrorFragment(c, h.assembler, boxID, http.StatusBadRequest, "invalid_box_id", err)
		return
	}
	target := presentation.BoxForStage(stage) + "-content"
	callID := callIDParam(c)

	sv, err := h.status.StageView(c.Request.Context(), callID, stage)
	if err != nil {
		respondServiceError(c, h.assembler, target, err, "status_failed")
		return
	}
	vs := services.ViewState{CallID: callID, Stages: map[types.Stage]services.StageView{stage: sv}}
	response.RespondRender(c, http.StatusOK, h.assembler.Assemble(vs, presentation.BoxPanel(stage)), sv)
}

func (h *GenerationHandler) renderPanel(c *gin.Context, panel presentation.Panel, target string) {
	vs, err := h.status.Check(c.Request.Context(), callIDParam(c))
	if err != nil {
		respondServiceError(c, h.assembler, target, err, "status_failed")
		return
	}
	response.RespondRender(c, http.StatusOK, h.assembler.Assemble(vs, panel), vs)
}

// callIDParam reads call_id from the path, the query string or a posted form.
func callIDParam(c *gin.Context) string {
	if id := strings.TrimSpace(c.Param("call_id")); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.Query("call_id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.PostForm("call_id"))
}
