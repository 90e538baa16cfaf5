package postboard

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
)

const loggerName = "postboard"

func defaultLogger() *glog.BaseLogger {
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithName(loggerName),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
}

// ResolveLogger returns the provider and the logger registered under name.
// When provider is nil it is derived from logger, or from the default glog
// logger when both are nil. A provider that yields no logger falls back to
// logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	if provider == nil {
		if logger == nil {
			provider = glog.ProviderFromLogger(defaultLogger())
		} else {
			provider = glog.ProviderFromLogger(logger)
		}
	}

	if resolved := provider.GetLogger(name); resolved != nil {
		return provider, resolved
	}

	if logger == nil {
		logger = noopLogger{}
	}
	return staticProvider{logger: logger}, logger
}

type staticProvider struct {
	logger Logger
}

func (p staticProvider) GetLogger(string) Logger {
	return p.logger
}

type noopLogger struct{}

func (noopLogger) Trace(string, ...any)                 {}
func (noopLogger) Debug(string, ...any)                 {}
func (noopLogger) Info(string, ...any)                  {}
func (noopLogger) Warn(string, ...any)                  {}
func (noopLogger) Error(string, ...any)                 {}
func (noopLogger) Fatal(string, ...any)                 {}
func (n noopLogger) WithContext(context.Context) Logger { return n }
