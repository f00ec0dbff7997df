package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prompt-battle/internal/presentation"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// WantsJSON reports whether the client asked for JSON instead of HTML fragments.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "application/json")
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// RenderEnvelope is the JSON form of a rendered panel.
type RenderEnvelope struct {
	Data any `json:"data,omitempty"`
	presentation.Render
}

// RespondRender writes the fragments as concatenated HTML for htmx, with the
// trigger in HX-Trigger, or as JSON when requested.
func RespondRender(c *gin.Context, status int, r presentation.Render, data any) {
	if r.Fragments == nil {
		r.Fragments = []presentation.Fragment{}
	}
	if WantsJSON(c) {
		c.JSON(status, RenderEnvelope{Data: data, Render: r})
		return
	}
	if r.Trigger != "" {
		c.Header("HX-Trigger", r.Trigger)
	}
	var b strings.Builder
	for _, f := range r.Fragments {
		b.WriteString(string(f.HTML))
	}
	c.Data(status, "text/html; charset=utf-8", []byte(b.String()))
}

// RespondErrorFragment answers with the JSON envelope or an HTML error
// fragment depending on what the client accepts. htmx ignores non-2xx
// bodies, so htmx requests get a 200 that is retargeted onto targetID.
func RespondErrorFragment(c *gin.Context, a *presentation.Assembler, targetID string, status int, code string, err error) {
	if WantsJSON(c) || a == nil {
		RespondError(c, status, code, err)
		return
	}
	msg := code
	if err != nil {
		msg = err.Error()
	}
	if IsHTMX(c) {
		c.Header("HX-Retarget", "#"+targetID)
		c.Header("HX-Reswap", "outerHTML")
		c.Header("X-Error-Code", code)
		status = http.StatusOK
	}
	RespondRender(c, status, presentation.Render{
		Fragments: []presentation.Fragment{a.ErrorFragment(targetID, msg)},
		Next:      presentation.NextAction{Kind: presentation.ActionStop},
	}, nil)
}
