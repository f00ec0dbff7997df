package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prompt-battle/internal/http/response"
	"github.com/yungbote/prompt-battle/internal/platform/apierr"
	"github.com/yungbote/prompt-battle/internal/presentation"
)

// respondServiceError maps a service error to its status and code, rendering
// into targetID for htmx clients.
func respondServiceError(c *gin.Context, a *presentation.Assembler, targetID string, err error, fallbackCode string) {
	if ae, ok := apierr.As(err); ok {
		response.RespondErrorFragment(c, a, targetID, ae.Status, ae.Code, ae.Err)
		return
	}
	response.RespondErrorFragment(c, a, targetID, http.StatusInternalServerError, fallbackCode, err)
}
