// Package shutdown stops the console's components in reverse start order.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/pkg/errors"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler runs named stop hooks once, newest first, under a shared deadline
type Handler struct {
	mu       sync.Mutex
	hooks    []hook
	timeout  time.Duration
	signals  chan os.Signal
	done     chan struct{}
	stopping bool
	err      error
}

// New creates a handler whose hooks share the given deadline
func New(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		signals: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// Register adds a stop hook. Hooks run in reverse registration order so the
// component started last (the HTTP server) stops first.
func (h *Handler) Register(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Hooks returns the registered hook names in execution order
func (h *Handler) Hooks() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.hooks))
	for i := len(h.hooks) - 1; i >= 0; i-- {
		names = append(names, h.hooks[i].name)
	}
	return names
}

// Wait blocks until SIGINT, SIGTERM, Trigger or ctx cancellation, then stops
// everything and returns the first hook error
func (h *Handler) Wait(ctx context.Context) error {
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(h.signals)

	select {
	case sig := <-h.signals:
		logger.AppLogger().WithFields(map[string]interface{}{
			"signal": sig.String(),
		}).Info("shutdown requested")
	case <-ctx.Done():
		logger.AppLogger().Info("shutdown requested by context")
	case <-h.done:
	}

	return h.Shutdown()
}

// Trigger asks a pending Wait to stop
func (h *Handler) Trigger() {
	select {
	case h.signals <- syscall.SIGTERM:
	default:
	}
}

// Shutdown runs every hook once. Later calls return the first result.
func (h *Handler) Shutdown() error {
	h.mu.Lock()
	if h.stopping {
		err := h.err
		h.mu.Unlock()
		return err
	}
	h.stopping = true
	hooks := append([]hook(nil), h.hooks...)
	h.mu.Unlock()

	close(h.done)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var first error
	for i := len(hooks) - 1; i >= 0; i-- {
		hk := hooks[i]
		fields := map[string]interface{}{"component": hk.name}
		log := logger.AppLogger().WithFields(fields)

		if ctx.Err() != nil {
			log.Warn("skipped, shutdown deadline exceeded")
			if first == nil {
				first = errors.Wrapf(ctx.Err(), "stop %s", hk.name)
			}
			continue
		}

		start := time.Now()
		if err := runHook(ctx, hk.fn); err != nil {
			log.Error("failed to stop", err)
			if first == nil {
				first = errors.Wrapf(err, "stop %s", hk.name)
			}
			continue
		}
		fields["duration_ms"] = time.Since(start).Milliseconds()
		log.Debug("stopped")
	}

	h.mu.Lock()
	h.err = first
	h.mu.Unlock()
	return first
}

// runHook returns when fn does or when ctx expires, whichever is first
func runHook(ctx context.Context, fn func(context.Context) error) error {
	result := make(chan error, 1)
	go func() { result <- fn(ctx) }()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stopping reports whether shutdown has begun
func (h *Handler) Stopping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopping
}

// Done is closed when shutdown begins
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
