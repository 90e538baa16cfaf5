package postboard

import (
	"context"
	"time"

	"github.com/goliatone/go-logger/glog"
)

// Logger is the structured logger used across the package.
type Logger = glog.Logger

// LoggerProvider hands out named loggers.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// Config holds client options
type Config interface {
	GetBaseURL() string
	GetTimeout() time.Duration
	GetUserAgent() string
	GetLocalValidation() bool
	GetAssumeYes() bool
}

// NoticeLevel is the severity of a Notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a single user facing notification. Messages carries the batch
// of validation messages when there is more than one.
type Notice struct {
	Level     NoticeLevel
	Operation string
	Message   string
	Messages  []string
	Err       error
}

// Presenter is the UI collaborator driven by the Orchestrator.
type Presenter interface {
	Notify(ctx context.Context, notice Notice)
	Redirect(ctx context.Context, route Route)
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool {
	if f == nil {
		return false
	}
	return f(ctx, prompt)
}

type noopPresenter struct{}

func (noopPresenter) Notify(context.Context, Notice)  {}
func (noopPresenter) Redirect(context.Context, Route) {}

// declineConfirmer refuses every prompt so nothing is deleted without an
// explicit Confirmer.
type declineConfirmer struct{}

func (declineConfirmer) Confirm(context.Context, string) bool { return false }
