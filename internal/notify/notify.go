// Package notify provides transient user notifications (toasts) that dismiss
// themselves after a fixed lifetime.
package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTTL is how long a toast stays visible unless removed earlier.
const DefaultTTL = 3 * time.Second

// Severity classifies a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityInfo:
		return true
	}
	return false
}

// Notifier reports a message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// Toast is a single visible notification.
type Toast struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// Queue holds the visible toasts of one client. Each toast is removed
// automatically after the queue TTL.
type Queue struct {
	ttl time.Duration

	mu     sync.Mutex
	toasts []Toast
	timers map[string]*time.Timer
	closed bool
}

var _ Notifier = (*Queue)(nil)

// NewQueue creates a Queue. A non-positive ttl selects DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
	}
}

// Notify implements Notifier. Unknown severities are shown as success.
func (q *Queue) Notify(ctx context.Context, message string, severity Severity) {
	t, ok := q.Push(message, severity)
	if !ok {
		return
	}
	zctx.From(ctx).Debug("Toast",
		zap.String("toast_id", t.ID),
		zap.String("severity", string(t.Severity)),
		zap.String("message", t.Message),
	)
}

// Push appends a toast and schedules its removal. It returns false when the
// queue is closed.
func (q *Queue) Push(message string, severity Severity) (Toast, bool) {
	if !severity.Valid() {
		severity = SeveritySuccess
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Toast{}, false
	}

	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	q.toasts = append(q.toasts, t)
	q.timers[t.ID] = time.AfterFunc(q.ttl, func() {
		q.Remove(t.ID)
	})
	return t, true
}

// Remove dismisses the toast with the given id and cancels its timer.
// It reports whether the toast was visible.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	n := len(q.toasts)
	q.toasts = slices.DeleteFunc(q.toasts, func(t Toast) bool {
		return t.ID == id
	})
	return len(q.toasts) != n
}

// List returns the visible toasts, oldest first.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	return slices.Clone(q.toasts)
}

// Close stops all pending timers and drops the visible toasts. Further pushes
// are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.toasts = nil
	q.closed = true
}
