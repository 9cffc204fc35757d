// Package http exposes the dispatch pipeline as the single action endpoint.
package http

import (
	"io"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/allisson/actiongate/internal/dispatch"
	"github.com/allisson/actiongate/internal/httputil"
)

// DispatchHandler handles POST /v1/actions.
type DispatchHandler struct {
	dispatcher *dispatch.Dispatcher
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(dispatcher *dispatch.Dispatcher) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher}
}

// Dispatch reads the request body and bearer token and runs the pipeline.
// All outcome mapping lives in the dispatcher; this handler only adapts the
// transport.
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	formatter := httputil.NewFormatterWithRequestID(requestid.Get(c))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		// An unreadable body dispatches as empty and fails extraction.
		body = nil
	}

	status, envelope := h.dispatcher.Dispatch(
		c.Request.Context(),
		formatter,
		body,
		bearerToken(c.GetHeader("Authorization")),
	)

	c.JSON(status, envelope)
}

// bearerToken extracts the token from an Authorization header. Returns ""
// for a missing or non-bearer header, which the pipeline rejects as
// unauthenticated.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
