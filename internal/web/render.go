package web

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/logger"
	"maragu.dev/gomponents"
)

// Render writes a gomponents node as an HTML response
func Render(c *gin.Context, status int, node gomponents.Node) {
	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		logger.AppLogger().ErrorContext(c.Request.Context(), "failed to render page", err)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// Redirect sends the browser to location. htmx requests get an HX-Redirect
// header so the whole page navigates instead of swapping a fragment.
func Redirect(c *gin.Context, location string) {
	if IsHTMX(c) {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}
