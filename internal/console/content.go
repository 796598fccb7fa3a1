package console

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/contentform"
	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/history"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
)

const contentHistoryLimit = 5

// contentPage shows the lookup form. With kind and id it loads the record
// into the editor; without parameters it reopens the last loaded record.
// Switching kind closes the editor.
func (s *Server) contentPage(c *gin.Context) {
	kindParam := c.Query("kind")
	idParam, hasID := c.GetQuery("id")

	s.withState(c, func(st *models.ConsoleState) {
		kind := models.KindMovie
		if st.Content != nil {
			kind = st.Content.Kind
		}
		if kindParam != "" {
			parsed, err := models.ParseKind(kindParam)
			if err != nil {
				s.notify(c, notify.Error, "Unknown content kind")
			} else {
				kind = parsed
			}
		}

		if !hasID {
			var tree *contentform.Tree
			if st.Content != nil && st.Content.Kind == kind {
				tree = contentform.Load(st.Content)
			} else if st.Content != nil {
				st.Content = nil
				s.saveState(c, st)
			}
			s.renderWorkspace(c, http.StatusOK, kind, tree, "")
			return
		}

		id, err := strconv.ParseInt(strings.TrimSpace(idParam), 10, 64)
		if err != nil || id <= 0 {
			s.notify(c, notify.Error, "Please enter a valid ID")
			s.renderWorkspace(c, http.StatusBadRequest, kind, nil, "")
			return
		}

		rec, err := s.client(c).GetContent(c.Request.Context(), kind, id)
		if err != nil {
			if s.fail(c, "Failed to load content: ", err) {
				return
			}
			s.renderWorkspace(c, http.StatusOK, kind, nil, "")
			return
		}

		st.Content = rec
		s.saveState(c, st)
		s.notify(c, notify.Success, fmt.Sprintf("%s loaded successfully", web.KindLabel(kind)))
		s.renderWorkspace(c, http.StatusOK, kind, contentform.Load(rec), "")
	})
}

// editContent handles every button of the editor form. The posted form is
// collected back into a tree; structural operations re-render it, save
// sends it to the catalog.
func (s *Server) editContent(c *gin.Context) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid content kind")
		return
	}
	id, ok := paramID(c)
	if !ok {
		c.String(http.StatusBadRequest, "Invalid content id")
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "Invalid form")
		return
	}

	tree, err := contentform.Collect(c.Request.PostForm)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if tree.Kind != kind || tree.ContentID != id {
		c.String(http.StatusBadRequest, "Form does not match the edited content")
		return
	}
	op, err := contentform.OpFromForm(c.Request.PostForm)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if op.Name != contentform.OpSave {
		if err := tree.Apply(op); err != nil {
			logger.AppLogger().WithFields(map[string]interface{}{
				"op":   op.String(),
				"kind": kind,
				"id":   id,
			}).WarnContext(c.Request.Context(), "editor operation rejected")
			s.notify(c, notify.Error, fmt.Sprintf("Cannot apply %s: %v", op.Name, err))
		}
		s.renderEditor(c, tree, "", false)
		return
	}

	s.withState(c, func(st *models.ConsoleState) {
		s.saveContent(c, st, tree)
	})
}

// saveContent sends the collected record, logs the attempt and reloads the
// record so the editor shows what the catalog stored
func (s *Server) saveContent(c *gin.Context, st *models.ConsoleState, tree *contentform.Tree) {
	ctx := c.Request.Context()
	rec := tree.Record()
	client := s.client(c)

	started := time.Now()
	result, err := client.UpdateContent(ctx, rec)
	s.recordEdit(c, rec, started, err)

	if err != nil {
		if s.fail(c, "Update failed: ", err) {
			return
		}
		s.renderEditor(c, tree, "Update failed: "+errors.UserMessage(err), true)
		return
	}

	label := web.KindLabel(rec.Kind)
	if result.Changed() {
		s.notify(c, notify.Success, label+" updated successfully")
	} else {
		message := result.Message
		if message == "" {
			message = "No changes to save"
		}
		s.notify(c, notify.Info, message)
	}

	fresh, err := client.GetContent(ctx, rec.Kind, rec.ID)
	if err != nil {
		if s.fail(c, "Failed to reload content: ", err) {
			return
		}
		s.renderEditor(c, tree, "", true)
		return
	}

	st.Content = fresh
	s.saveState(c, st)
	s.renderEditor(c, contentform.Load(fresh), "", true)
}

func (s *Server) recordEdit(c *gin.Context, rec *models.Record, started time.Time, saveErr error) {
	if s.deps.History == nil {
		return
	}
	_, err := s.deps.History.Record(c.Request.Context(), history.Entry{
		SessionID: c.GetString(ctxSessionKey),
		Record:    rec,
		StartedAt: started,
		Err:       saveErr,
	})
	if err != nil {
		logger.AppLogger().ErrorContext(c.Request.Context(), "failed to record edit", err)
	}
}

// renderEditor answers an editor post. htmx swaps the form alone, plus the
// recent saves after a save attempt; plain posts get the whole page.
func (s *Server) renderEditor(c *gin.Context, tree *contentform.Tree, saveError string, saved bool) {
	if !web.IsHTMX(c) {
		s.renderWorkspace(c, http.StatusOK, tree.Kind, tree, saveError)
		return
	}

	nodes := []gomponents.Node{contentform.Render(tree, s.editorOptions(c, tree, saveError))}
	if saved {
		nodes = append(nodes, contentHistory(s.recentEdits(c, tree.Kind, tree.ContentID), true))
	}
	s.fragment(c, http.StatusOK, nodes...)
}

func (s *Server) renderWorkspace(c *gin.Context, status int, kind models.Kind, tree *contentform.Tree, saveError string) {
	var editor, edits gomponents.Node
	id := ""
	if tree != nil {
		id = strconv.FormatInt(tree.ContentID, 10)
		editor = contentform.Render(tree, s.editorOptions(c, tree, saveError))
		edits = contentHistory(s.recentEdits(c, tree.Kind, tree.ContentID), false)
	}

	body := contentWorkspace(kind, id, editor, edits)
	if web.IsHTMX(c) {
		if status >= http.StatusBadRequest {
			status = http.StatusOK
		}
		s.fragment(c, status, body)
		return
	}
	s.page(c, status, "Content", "content", body)
}

func (s *Server) editorOptions(c *gin.Context, tree *contentform.Tree, saveError string) contentform.Options {
	return contentform.Options{
		Action:    fmt.Sprintf("/content/%s/%d", tree.Kind, tree.ContentID),
		CSRFToken: s.csrfToken(c),
		Error:     saveError,
	}
}

func (s *Server) recentEdits(c *gin.Context, kind models.Kind, id int64) []models.EditLog {
	if s.deps.History == nil {
		return nil
	}
	edits, err := s.deps.History.ForContent(c.Request.Context(), kind, id, contentHistoryLimit)
	if err != nil {
		logger.AppLogger().ErrorContext(c.Request.Context(), "failed to list recent edits", err)
		return nil
	}
	return edits
}
