package console

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/catalog"
	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/models"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/web"
	csrf "github.com/utrack/gin-csrf"
	"maragu.dev/gomponents"
)

// Session cookie keys
const (
	sessionTokenKey = "token"
	sessionStateKey = "sid"
	sessionUserKey  = "user"
)

// Gin context keys set by requireToken
const (
	ctxTokenKey   = "catalog_token"
	ctxSessionKey = "state_session"
)

// client returns a catalog client carrying the session's token
func (s *Server) client(c *gin.Context) *catalog.Client {
	return s.deps.Catalog.WithToken(c.GetString(ctxTokenKey))
}

func (s *Server) csrfToken(c *gin.Context) string {
	if !s.opts.CSRF {
		return ""
	}
	return csrf.GetToken(c)
}

func (s *Server) saveSession(c *gin.Context) {
	if err := sessions.Default(c).Save(); err != nil {
		logger.AppLogger().ErrorContext(c.Request.Context(), "failed to save session", err)
	}
}

func (s *Server) notify(c *gin.Context, kind notify.Kind, message string) {
	s.deps.Notifier.Push(sessions.Default(c), kind, message)
}

// loadState returns the console state of the signed-in session
func (s *Server) loadState(c *gin.Context) (*models.ConsoleState, error) {
	return s.deps.Store.Load(c.Request.Context(), c.GetString(ctxSessionKey))
}

func (s *Server) saveState(c *gin.Context, st *models.ConsoleState) {
	if err := s.deps.Store.Save(c.Request.Context(), st); err != nil {
		logger.AppLogger().ErrorContext(c.Request.Context(), "failed to save console state", err)
		s.notify(c, notify.Error, errors.UserMessage(err))
	}
}

// withState loads the session state or answers with an error page
func (s *Server) withState(c *gin.Context, fn func(st *models.ConsoleState)) {
	st, err := s.loadState(c)
	if err != nil {
		logger.AppLogger().ErrorContext(c.Request.Context(), "failed to load console state", err)
		s.notify(c, notify.Error, errors.UserMessage(err))
		s.page(c, http.StatusInternalServerError, "Error", "", web.Empty("The console state could not be loaded."))
		return
	}
	fn(st)
}

// fail reports err to the operator with the given prefix. An expired session
// signs the operator out and redirects to the login page; fail then returns
// true and the caller must not write a response.
func (s *Server) fail(c *gin.Context, prefix string, err error) bool {
	if errors.IsSessionExpired(err) {
		s.signOut(c)
		s.notify(c, notify.Error, errors.UserMessage(err))
		s.saveSession(c)
		web.Redirect(c, "/login")
		return true
	}

	logger.AppLogger().WithFields(map[string]interface{}{
		"path": c.Request.URL.Path,
		"code": errors.GetErrorCode(err),
	}).WarnContext(c.Request.Context(), prefix+errors.UserMessage(err))
	s.notify(c, notify.Error, prefix+errors.UserMessage(err))
	return false
}

// signOut forgets the token and drops the session's console state
func (s *Server) signOut(c *gin.Context) {
	session := sessions.Default(c)
	if sid, _ := session.Get(sessionStateKey).(string); sid != "" {
		if err := s.deps.Store.Delete(c.Request.Context(), sid); err != nil {
			logger.AppLogger().ErrorContext(c.Request.Context(), "failed to delete console state", err)
		}
	}
	session.Delete(sessionTokenKey)
	session.Delete(sessionStateKey)
	session.Delete(sessionUserKey)
}

// page renders a full console page with the queued toasts
func (s *Server) page(c *gin.Context, status int, title, active string, body gomponents.Node) {
	session := sessions.Default(c)
	token := s.csrfToken(c)
	signedIn, _ := session.Get(sessionTokenKey).(string)
	toasts := notify.Pop(session)
	s.saveSession(c)

	web.Render(c, status, web.Layout(web.Page{
		Title:     title,
		Active:    active,
		CSRFToken: token,
		SignedIn:  signedIn != "",
		Toasts:    toasts,
		Body:      body,
	}))
}

// fragment renders an htmx partial; queued toasts ride along out of band
func (s *Server) fragment(c *gin.Context, status int, nodes ...gomponents.Node) {
	session := sessions.Default(c)
	toasts := notify.Pop(session)
	s.saveSession(c)

	if len(toasts) > 0 {
		nodes = append(nodes, web.Toasts(toasts, true))
	}
	web.Render(c, status, gomponents.Group(nodes))
}

// respond answers a form post: htmx gets the fragment, plain posts are
// redirected to location where the toasts show up
func (s *Server) respond(c *gin.Context, location string, fragment func() gomponents.Node) {
	if web.IsHTMX(c) {
		s.fragment(c, http.StatusOK, fragment())
		return
	}
	s.saveSession(c)
	web.Redirect(c, location)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
