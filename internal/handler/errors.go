package handler

import (
	"log/slog"
	"net/http"

	"authgate/internal/apperror"
	"authgate/internal/principal"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError writes err through the standard envelope. Unclassified errors are logged and masked.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, response.Error(status, apperror.PublicMessage(err)))
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// actor returns the operator admitted by the admin guard.
func actor(c *gin.Context) principal.Admin {
	admin, _ := principal.AdminFrom(c.Request.Context())
	return admin
}
