package console

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func (s *Server) historyPage(c *gin.Context) {
	var edits []models.EditLog
	if s.deps.History != nil {
		var err error
		edits, err = s.deps.History.Recent(c.Request.Context(), s.opts.HistoryLimit)
		if err != nil {
			logger.AppLogger().ErrorContext(c.Request.Context(), "failed to list edit history", err)
			s.notify(c, notify.Error, errors.UserMessage(err))
		}
	}

	s.page(c, http.StatusOK, "History", "history", historyView(edits))
}

func (s *Server) healthCheck(c *gin.Context) {
	if s.opts.Health != nil {
		if err := s.opts.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

func historyView(edits []models.EditLog) gomponents.Node {
	if len(edits) == 0 {
		return html.Section(
			html.H1(gomponents.Text("History")),
			web.Empty("No content saves recorded yet"),
		)
	}

	rows := make([]gomponents.Node, 0, len(edits))
	for _, e := range edits {
		rows = append(rows, html.Tr(
			html.Td(html.Title(e.StartedAt.Format("2006-01-02 15:04:05")), gomponents.Text(web.RelativeTime(e.StartedAt))),
			html.Td(gomponents.Text(web.KindLabel(e.Kind))),
			html.Td(html.A(html.Href(contentLink(e.Kind, e.ContentID)), gomponents.Textf("#%d", e.ContentID))),
			html.Td(gomponents.Text(e.Title)),
			html.Td(html.Span(html.Class(statusBadge(e.Status)), gomponents.Text(e.Status))),
			html.Td(gomponents.Text(fmt.Sprintf("%d ms", e.Duration().Milliseconds()))),
			html.Td(gomponents.Text(deref(e.ErrorMessage))),
		))
	}

	return html.Section(
		html.H1(gomponents.Text("History")),
		html.Table(
			html.Class("table"),
			html.THead(html.Tr(
				html.Th(gomponents.Text("When")),
				html.Th(gomponents.Text("Type")),
				html.Th(gomponents.Text("ID")),
				html.Th(gomponents.Text("Title")),
				html.Th(gomponents.Text("Status")),
				html.Th(gomponents.Text("Duration")),
				html.Th(gomponents.Text("Error")),
			)),
			html.TBody(gomponents.Group(rows)),
		),
	)
}
