package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prompt-battle/internal/platform/logger"
	"github.com/yungbote/prompt-battle/internal/presentation"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type PageHandler struct {
	log      *logger.Logger
	maxInput int
}

func NewPageHandler(log *logger.Logger, maxInput int) *PageHandler {
	return &PageHandler{log: log.With("handler", "PageHandler"), maxInput: maxInput}
}

// GET /
func (h *PageHandler) Index(c *gin.Context) {
	data := map[string]any{
		"SubmitURL":   "/output",
		"GradeURL":    "/grade_output",
		"InputID":     presentation.InputID,
		"Placeholder": inputPlaceholder,
		"MaxInput":    h.maxInput,
		"PrimaryID":   presentation.PrimaryGroupID,
		"DerivedID":   presentation.DerivedGroupID,
		"GradeID":     presentation.GradeStatusID,
		"Primary":     []string{presentation.Box1 + "-content", presentation.Box2 + "-content"},
		"Derived":     []string{presentation.Box3 + "-content", presentation.Box4 + "-content"},
	}
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		h.log.Error("render index failed", "error", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
