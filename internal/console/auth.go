package console

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/state"
	"github.com/glefebvre/catalog-console/internal/web"
	"maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

func (s *Server) loginPage(c *gin.Context) {
	if token, _ := sessions.Default(c).Get(sessionTokenKey).(string); token != "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.page(c, http.StatusOK, "Login", "", loginView(s.csrfToken(c), ""))
}

func (s *Server) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		s.notify(c, notify.Error, "Username and password are required")
		s.page(c, http.StatusBadRequest, "Login", "", loginView(s.csrfToken(c), username))
		return
	}

	token, err := s.deps.Catalog.Login(c.Request.Context(), username, password)
	if err != nil {
		logger.AppLogger().WithFields(map[string]interface{}{
			"username": username,
		}).WarnContext(c.Request.Context(), "login failed")
		s.notify(c, notify.Error, "Login failed: "+errors.UserMessage(err))
		s.page(c, http.StatusUnauthorized, "Login", "", loginView(s.csrfToken(c), username))
		return
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	session.Set(sessionStateKey, state.NewSessionID())
	session.Set(sessionUserKey, username)
	s.saveSession(c)

	logger.AppLogger().WithFields(map[string]interface{}{
		"username": username,
	}).InfoContext(c.Request.Context(), "operator signed in")

	web.Redirect(c, "/")
}

func (s *Server) logout(c *gin.Context) {
	s.signOut(c)
	s.notify(c, notify.Info, "Signed out")
	s.saveSession(c)
	web.Redirect(c, "/login")
}

// index confirms the token is still accepted before entering the console
func (s *Server) index(c *gin.Context) {
	status, err := s.client(c).AuthCheck(c.Request.Context())
	if err != nil {
		if s.fail(c, "Authentication check failed: ", err) {
			return
		}
		s.saveSession(c)
		c.Redirect(http.StatusSeeOther, "/trending")
		return
	}
	if !status.Authenticated {
		s.fail(c, "", errors.UnauthorizedError("Session expired. Please log in again."))
		return
	}

	c.Redirect(http.StatusSeeOther, "/trending")
}

func loginView(csrfToken, username string) gomponents.Node {
	return html.Div(
		html.Class("login card"),
		html.H1(gomponents.Text("Catalog Console")),
		html.Form(
			html.Method("post"),
			html.Action("/login"),
			web.CSRFField(csrfToken),
			web.FormGroup("Username", "username", web.TextInput("username", username, html.Required(), html.AutoComplete("username"))),
			web.FormGroup("Password", "password", html.Input(
				html.Type("password"),
				html.ID(web.FieldID("password")),
				html.Name("password"),
				html.Class("form-control"),
				html.Required(),
				html.AutoComplete("current-password"),
			)),
			html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Sign In")),
		),
	)
}
