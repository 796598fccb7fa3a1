package catalog

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/glefebvre/catalog-console/internal/errors"
	"github.com/glefebvre/catalog-console/internal/logger"
	pkgerrors "github.com/pkg/errors"
)

const (
	defaultRetryAttempts   = 1
	defaultInitialBackoff  = 100 * time.Millisecond
	defaultMaxBackoff      = 2 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
)

// BreakerState is the state of the catalog circuit breaker
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half-open"
)

// breaker stops calling the catalog API once it has been unavailable for
// maxFailures consecutive calls. After the cooldown a single probe call is
// let through; its outcome closes or reopens the breaker.
type breaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	maxFailures int
	cooldown    time.Duration
	openedAt    time.Time
	now         func() time.Time
}

func newBreaker(maxFailures int, cooldown time.Duration) *breaker {
	if maxFailures <= 0 {
		maxFailures = defaultBreakerFailures
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	return &breaker{
		state:       BreakerClosed,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// allow reports whether a call may go out
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return errors.ExternalServiceError(serviceName, "The catalog API is unavailable. Try again shortly.", nil).
				WithContext("breaker", string(BreakerOpen))
		}
		b.state = BreakerHalfOpen
		return nil
	case BreakerHalfOpen:
		// one probe at a time
		return errors.ExternalServiceError(serviceName, "The catalog API is unavailable. Try again shortly.", nil).
			WithContext("breaker", string(BreakerHalfOpen))
	default:
		return nil
	}
}

// record updates the breaker with the outcome of an allowed call
func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cancelled(err) {
		// the caller gave up; a cancelled probe hands the probe to the next call
		if b.state == BreakerHalfOpen {
			b.state = BreakerOpen
		}
		return
	}

	if !unavailable(err) {
		if b.state != BreakerClosed {
			logger.AppLogger().Info("catalog API reachable again, closing breaker")
		}
		b.state = BreakerClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.maxFailures {
		if b.state != BreakerOpen {
			logger.AppLogger().WithFields(map[string]interface{}{
				"failures":    b.failures,
				"cooldown_ms": b.cooldown.Milliseconds(),
			}).Warn("catalog API unavailable, opening breaker")
		}
		b.state = BreakerOpen
		b.openedAt = b.now()
	}
}

func (b *breaker) current() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// cancelled reports whether the call ended because its own context did.
// Transport failures, client timeouts included, arrive as AppErrors instead.
func cancelled(err error) bool {
	if errors.GetErrorCode(err) != errors.CodeUnknown {
		return false
	}
	return pkgerrors.Is(err, context.Canceled) || pkgerrors.Is(err, context.DeadlineExceeded)
}

// unavailable reports whether err means the catalog API could not serve the
// call at all, as opposed to rejecting it
func unavailable(err error) bool {
	if err == nil || cancelled(err) {
		return false
	}
	switch errors.GetErrorCode(err) {
	case errors.CodeExternalService:
		return true
	case errors.CodeRequestFailed:
		switch errors.Status(err) {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// retryPolicy retries reads that failed because the API was unavailable
type retryPolicy struct {
	attempts       int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.initialBackoff << uint(attempt-1)
	if d <= 0 || d > p.maxBackoff {
		d = p.maxBackoff
	}
	// up to 10% jitter
	return d + time.Duration(rand.Int63n(int64(d)/10+1))
}

// guarded sends a call through the breaker. GET calls are retried while the
// API is unavailable; writes are sent once.
func (c *Client) guarded(ctx context.Context, method, endpoint string, call func() ([]byte, error)) ([]byte, error) {
	attempts := 1
	if method == http.MethodGet && c.retry.attempts > 1 {
		attempts = c.retry.attempts
	}

	var (
		data []byte
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.breaker.allow(); err != nil {
			return nil, err
		}

		data, err = call()
		c.breaker.record(err)
		if !unavailable(err) || attempt == attempts {
			return data, err
		}

		wait := c.retry.backoff(attempt)
		logger.AppLogger().WithFields(map[string]interface{}{
			"endpoint": endpoint,
			"attempt":  attempt,
			"wait_ms":  wait.Milliseconds(),
		}).WarnContext(ctx, "catalog unavailable, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return data, err
}

// BreakerState reports whether calls to the catalog API are currently let through
func (c *Client) BreakerState() BreakerState {
	return c.breaker.current()
}
