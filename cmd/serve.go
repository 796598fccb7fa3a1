package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glefebvre/catalog-console/internal/catalog"
	"github.com/glefebvre/catalog-console/internal/config"
	"github.com/glefebvre/catalog-console/internal/console"
	"github.com/glefebvre/catalog-console/internal/database"
	"github.com/glefebvre/catalog-console/internal/debounce"
	"github.com/glefebvre/catalog-console/internal/history"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/glefebvre/catalog-console/internal/notify"
	"github.com/glefebvre/catalog-console/internal/scheduler"
	"github.com/glefebvre/catalog-console/internal/shutdown"
	"github.com/glefebvre/catalog-console/internal/state"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin console",
	Long: `Start the console HTTP server.

Console state (loaded users, the trending working copy, the open editor) is kept
per session in the database or in redis, depending on state.backend. Idle states
are pruned on the state.prune_interval schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		log := logger.AppLogger()
		if cfg.GetAppLogLevel() == "debug" {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		if err := database.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		handler := shutdown.New(shutdownTimeout)
		handler.Register("database", func(context.Context) error {
			return database.Close()
		})

		backend, err := openStateBackend(cfg)
		if err != nil {
			handler.Shutdown()
			return err
		}
		if backend.close != nil {
			handler.Register("state", func(context.Context) error {
				return backend.close()
			})
		}

		jobs := scheduler.New()
		if err := jobs.AddJob(cfg.State.PruneInterval, state.NewPruneJob(backend.store, cfg.StateTTL())); err != nil {
			handler.Shutdown()
			return err
		}
		jobs.Start()
		handler.Register("scheduler", jobs.Stop)

		server := console.NewServer(console.Deps{
			Catalog:  catalog.New(cfg.CatalogClient()),
			Store:    backend.store,
			History:  history.NewRecorder(database.Get()),
			Notifier: notify.New(cfg.NotificationDuration()),
			Debounce: debounce.New(cfg.SearchDebounce()),
		}, console.Options{
			SessionSecret:  cfg.Server.SessionSecret,
			SecureCookies:  cfg.Server.SecureCookies,
			CSRF:           cfg.Server.CSRF,
			CORSOrigins:    cfg.Server.CORSOrigins,
			SearchMinChars: cfg.Console.SearchMinChars,
			HistoryLimit:   cfg.Console.HistoryLimit,
			Health:         backend.health,
		})
		handler.Register("http", server.Shutdown)

		serveErr := make(chan error, 1)
		go func() {
			if err := server.Run(cfg.Server.Port); err != nil {
				log.Error("console server failed", err)
				serveErr <- err
				handler.Trigger()
			}
		}()

		log.WithFields(map[string]interface{}{
			"port":          cfg.Server.Port,
			"catalog":       cfg.Catalog.BaseURL,
			"state_backend": cfg.State.Backend,
			"csrf":          cfg.Server.CSRF,
		}).Info("console listening")

		if err := handler.Wait(cmd.Context()); err != nil {
			log.Error("shutdown incomplete", err)
		}

		select {
		case err := <-serveErr:
			return err
		default:
			log.Info("console stopped")
			return nil
		}
	},
}

// stateBackend is the configured console state store with its health check
type stateBackend struct {
	store  state.Store
	health func() error
	close  func() error
}

// openStateBackend expects database.Initialize to have run
func openStateBackend(cfg *config.Config) (*stateBackend, error) {
	switch cfg.State.Backend {
	case "redis":
		client := state.NewRedisClient(state.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := state.NewRedisStore(client, cfg.StateTTL())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, err
		}

		return &stateBackend{
			store: store,
			health: func() error {
				if err := database.HealthCheck(); err != nil {
					return err
				}
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return store.Ping(ctx)
			},
			close: client.Close,
		}, nil
	default:
		return &stateBackend{
			store:  state.NewGormStore(database.Get()),
			health: database.HealthCheck,
		}, nil
	}
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
}
