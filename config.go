package postboard

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-postboard/client"
)

// Options is the default Config implementation.
type Options struct {
	BaseURL         string        `json:"base_url"`
	Timeout         time.Duration `json:"timeout"`
	UserAgent       string        `json:"user_agent"`
	LocalValidation bool          `json:"local_validation"`
	AssumeYes       bool          `json:"assume_yes"`
}

// DefaultOptions returns options pointing at a local server.
func DefaultOptions() Options {
	return Options{
		BaseURL:         "http://localhost:8080",
		Timeout:         client.DefaultTimeout,
		UserAgent:       "go-postboard",
		LocalValidation: true,
	}
}

func (o Options) GetBaseURL() string        { return o.BaseURL }
func (o Options) GetTimeout() time.Duration { return o.Timeout }
func (o Options) GetUserAgent() string      { return o.UserAgent }
func (o Options) GetLocalValidation() bool  { return o.LocalValidation }
func (o Options) GetAssumeYes() bool        { return o.AssumeYes }

// Validate checks the options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.BaseURL, validation.Required, is.URL),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
	)
}

// Components groups the wired core.
type Components struct {
	Client       *client.Client
	API          *API
	Classifier   *Classifier
	Sessions     *SessionStore
	Orchestrator *Orchestrator
}

// Setup wires the transport, session store and orchestrator from cfg.
// The logger provider names a logger per component.
func Setup(cfg Config, provider LoggerProvider, opts ...OrchestratorOption) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postboard: config is required")
	}
	if v, ok := cfg.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("postboard: invalid config: %w", err)
		}
	}

	provider, _ = ResolveLogger(loggerName, provider, nil)

	c, err := client.New(client.Config{
		BaseURL:   cfg.GetBaseURL(),
		Timeout:   cfg.GetTimeout(),
		UserAgent: cfg.GetUserAgent(),
	})
	if err != nil {
		return nil, err
	}

	_, classifierLogger := ResolveLogger("postboard.classifier", provider, nil)
	classifier := NewClassifier(WithClassifierLogger(classifierLogger))

	api := NewAPI(c)
	sessions := NewSessionStore(api,
		WithSessionLoggerProvider(provider),
		WithSessionClassifier(classifier),
	)

	base := []OrchestratorOption{
		WithLoggerProvider(provider),
		WithClassifier(classifier),
		WithLocalValidation(cfg.GetLocalValidation()),
	}
	orchestrator := NewOrchestrator(api, sessions, append(base, opts...)...)

	return &Components{
		Client:       c,
		API:          api,
		Classifier:   classifier,
		Sessions:     sessions,
		Orchestrator: orchestrator,
	}, nil
}
