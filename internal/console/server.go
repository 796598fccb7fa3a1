// Package console serves the admin console: login, users, trending curation,
// the content editor and the edit history.
package console

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/catalog"
	"github.com/glefebvre/catalog-console/internal/debounce"
	"github.com/glefebvre/catalog-console/internal/history"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/state"
	csrf "github.com/utrack/gin-csrf"
)

const sessionName = "console_session"

// Deps are the collaborators of the console handlers
type Deps struct {
	Catalog  *catalog.Client
	Store    state.Store
	History  *history.Recorder
	Notifier *notify.Notifier
	Debounce *debounce.Group
}

// Options configure the console server
type Options struct {
	SessionSecret string
	SecureCookies bool
	// CSRF enables token checks on every non-GET console request
	CSRF        bool
	CORSOrigins []string
	// SearchMinChars is the shortest trending search query sent to the API
	SearchMinChars int
	HistoryLimit   int
	// Health reports the status of the console database
	Health func() error
}

// Server represents the console HTTP server
type Server struct {
	router *gin.Engine
	mu     sync.Mutex
	http   *http.Server
	deps   Deps
	opts   Options
}

// NewServer creates a new console server instance
func NewServer(deps Deps, opts Options) *Server {
	if deps.Notifier == nil {
		deps.Notifier = notify.New(notify.DefaultDuration)
	}
	if deps.Debounce == nil {
		deps.Debounce = debounce.New(0)
	}
	if opts.SearchMinChars <= 0 {
		opts.SearchMinChars = 2
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}

	router := gin.New()

	s := &Server{
		router: router,
		deps:   deps,
		opts:   opts,
	}

	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler of the console
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the console server on the specified port. It returns nil once
// the server is shut down.
func (s *Server) Run(port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(logger.AppLogger().Writer(logger.LevelWarn), "", 0),
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware(), recoveryMiddleware(), loggingMiddleware())

	if len(s.opts.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL", "X-CSRF-TOKEN"},
			ExposeHeaders:    []string{"X-Request-ID", "HX-Redirect"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check endpoint
	s.router.GET("/healthz", s.healthCheck)

	store := cookie.NewStore([]byte(s.opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	site := s.router.Group("/", sessions.Sessions(sessionName, store))
	if s.opts.CSRF {
		site.Use(csrf.Middleware(csrf.Options{
			Secret:    s.opts.SessionSecret,
			ErrorFunc: csrfError,
		}))
	}

	site.GET("/login", s.loginPage)
	site.POST("/login", s.login)
	site.POST("/logout", s.logout)

	authed := site.Group("/", s.requireToken())
	{
		authed.GET("/", s.index)

		// Users
		authed.GET("/users", s.usersPage)
		authed.POST("/users/load", s.loadUsers)
		authed.GET("/users/search", s.searchUsers)
		authed.POST("/users/cancel", s.cancelUserEdit)
		authed.GET("/users/:id/edit", s.editUser)
		authed.POST("/users/:id", s.updateUser)
		authed.POST("/users/:id/delete", s.deleteUser)

		// Trending
		authed.GET("/trending", s.trendingPage)
		authed.POST("/trending/refresh", s.refreshTrending)
		authed.POST("/trending/save", s.saveTrending)
		authed.GET("/trending/search/:kind", s.searchTrending)
		authed.POST("/trending/:kind/add", s.addTrending)
		authed.POST("/trending/:kind/:id/remove", s.removeTrending)

		// Content editor
		authed.GET("/content", s.contentPage)
		authed.POST("/content/:kind/:id", s.editContent)

		authed.GET("/history", s.historyPage)
	}
}
