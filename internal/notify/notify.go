// Package notify queues toast notifications in the session flash so they are
// shown on the next rendered page.
package notify

import (
	"encoding/json"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
)

const flashKey = "toasts"

// DefaultDuration is how long a toast stays on screen
const DefaultDuration = 5 * time.Second

// Kind is the visual style of a toast
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Info    Kind = "info"
)

// Notification is a single toast
type Notification struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Notifier pushes toasts with a fixed auto-dismiss duration
type Notifier struct {
	duration time.Duration
}

// New creates a notifier; a non-positive duration uses DefaultDuration
func New(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{duration: duration}
}

// Make builds a notification without queuing it
func (n *Notifier) Make(kind Kind, message string) Notification {
	return Notification{
		ID:       "toast-" + uuid.NewString(),
		Kind:     kind,
		Message:  message,
		Duration: n.duration,
	}
}

// Push queues a notification in the session flash. The caller saves the
// session.
func (n *Notifier) Push(session sessions.Session, kind Kind, message string) Notification {
	toast := n.Make(kind, message)
	data, err := json.Marshal(toast)
	if err != nil {
		return toast
	}
	session.AddFlash(string(data), flashKey)
	return toast
}

// Success queues a success toast
func (n *Notifier) Success(session sessions.Session, message string) Notification {
	return n.Push(session, Success, message)
}

// Error queues an error toast
func (n *Notifier) Error(session sessions.Session, message string) Notification {
	return n.Push(session, Error, message)
}

// Info queues an informational toast
func (n *Notifier) Info(session sessions.Session, message string) Notification {
	return n.Push(session, Info, message)
}

// Pop drains the queued notifications. The caller saves the session.
func Pop(session sessions.Session) []Notification {
	var out []Notification
	for _, raw := range session.Flashes(flashKey) {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		var toast Notification
		if err := json.Unmarshal([]byte(s), &toast); err != nil {
			continue
		}
		out = append(out, toast)
	}
	return out
}

// Millis returns the auto-dismiss delay in milliseconds
func (n Notification) Millis() int64 {
	return n.Duration.Milliseconds()
}
