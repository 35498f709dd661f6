// Package apperr provides structured application errors and the
// handle-and-notify helper used around user-triggered operations.
package apperr

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/velostore/internal/notify"
)

const (
	// CodeAsync marks a failure captured by Try.
	CodeAsync = "ASYNC_ERROR"

	// DefaultMessage is shown when an error carries no usable message.
	DefaultMessage = "An unexpected error occurred"

	unknownMessage = "Unknown error"
)

// Error is a coded, user-presentable error.
type Error struct {
	Code    string
	Message string
	Details error
}

// New creates an Error.
func New(code, message string, details error) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Details
}

// Result is the outcome of Try: exactly one of Data (non-zero on success)
// and Err is meaningful.
type Result[T any] struct {
	Data T
	Err  *Error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Handler logs failures and reports them to the user.
type Handler struct {
	notifier notify.Notifier
}

// NewHandler creates a Handler. A nil notifier disables user reporting.
func NewHandler(n notify.Notifier) *Handler {
	return &Handler{notifier: n}
}

// Handle logs err under scope, shows its message with error severity and
// returns that message.
func (h *Handler) Handle(ctx context.Context, err error, scope string) string {
	if scope == "" {
		scope = "App"
	}
	msg := Message(err)
	zctx.From(ctx).Error("Operation failed",
		zap.String("scope", scope),
		zap.Error(err),
	)
	if h != nil && h.notifier != nil {
		h.notifier.Notify(ctx, msg, notify.SeverityError)
	}
	return msg
}

// Message extracts the user-facing message of err.
func Message(err error) string {
	var appErr *Error
	switch {
	case err == nil:
		return DefaultMessage
	case errors.As(err, &appErr) && appErr.Message != "":
		return appErr.Message
	case err.Error() != "":
		return err.Error()
	default:
		return DefaultMessage
	}
}

// Try runs op. On failure, including a panic, the error is passed to
// h.Handle and returned as a CodeAsync Error with zero Data.
func Try[T any](ctx context.Context, h *Handler, scope string, op func(ctx context.Context) (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("panic: %v", r)
			h.Handle(ctx, err, scope)
			res = Result[T]{Err: New(CodeAsync, unknownMessage, err)}
		}
	}()

	data, err := op(ctx)
	if err != nil {
		h.Handle(ctx, err, scope)
		msg := err.Error()
		if msg == "" {
			msg = unknownMessage
		}
		return Result[T]{Err: New(CodeAsync, msg, err)}
	}
	return Result[T]{Data: data}
}
