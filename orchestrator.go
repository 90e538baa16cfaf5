package postboard

import (
	"context"
	"errors"
	"time"
)

// Orchestrator sequences every user operation: guard, API call, then either
// the result or exactly one classified failure notice. It holds no session
// state of its own; the SessionStore is injected.
type Orchestrator struct {
	api             PostAPI
	sessions        *SessionStore
	classifier      *Classifier
	presenter       Presenter
	confirmer       Confirmer
	logger          Logger
	provider        LoggerProvider
	activity        activityRecorder
	localValidation bool
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPresenter sets the UI collaborator receiving notices and redirects.
func WithPresenter(p Presenter) OrchestratorOption {
	return func(o *Orchestrator) {
		if p != nil {
			o.presenter = p
		}
	}
}

// WithConfirmer sets the collaborator asked before deleting.
func WithConfirmer(c Confirmer) OrchestratorOption {
	return func(o *Orchestrator) {
		if c != nil {
			o.confirmer = c
		}
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
			o.activity.logger = logger
		}
	}
}

// WithLoggerProvider resolves the orchestrator logger from provider.
func WithLoggerProvider(provider LoggerProvider) OrchestratorOption {
	return func(o *Orchestrator) {
		o.provider, o.logger = ResolveLogger("postboard.orchestrator", provider, o.logger)
		o.activity.logger = o.logger
	}
}

// WithActivitySink sets the sink receiving operation events.
func WithActivitySink(sink ActivitySink) OrchestratorOption {
	return func(o *Orchestrator) {
		o.activity.sink = normalizeActivitySink(sink)
	}
}

// WithLocalValidation checks inputs against the server rules before
// sending them.
func WithLocalValidation(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.localValidation = enabled
	}
}

// WithClassifier overrides the error classifier.
func WithClassifier(c *Classifier) OrchestratorOption {
	return func(o *Orchestrator) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithClock injects a custom clock for activity timestamps.
func WithClock(clock func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		if clock != nil {
			o.activity.now = clock
		}
	}
}

// NewOrchestrator creates an Orchestrator over api and sessions.
func NewOrchestrator(api PostAPI, sessions *SessionStore, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		api:       api,
		sessions:  sessions,
		presenter: noopPresenter{},
		confirmer: declineConfirmer{},
		logger:    noopLogger{},
		activity: activityRecorder{
			sink:   noopActivitySink{},
			logger: noopLogger{},
			now:    time.Now,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	if o.classifier == nil {
		o.classifier = NewClassifier(WithClassifierLogger(o.logger))
	}

	return o
}

// Sessions returns the injected SessionStore.
func (o *Orchestrator) Sessions() *SessionStore {
	return o.sessions
}

// Bootstrap initializes the session from the server cookie. Failures other
// than an anonymous visitor produce a single notice.
func (o *Orchestrator) Bootstrap(ctx context.Context) Session {
	session, opErr := o.sessions.Initialize(ctx)
	if opErr != nil {
		o.notify(ctx, Notice{
			Level:     NoticeError,
			Operation: OpInitializeSession,
			Message:   MsgUserInfoFailed,
			Messages:  opErr.Messages,
			Err:       opErr,
		})
	}
	return session
}

func (o *Orchestrator) notify(ctx context.Context, notice Notice) {
	o.presenter.Notify(WithSession(ctx, o.sessions.Current()), notice)
}

func (o *Orchestrator) redirect(ctx context.Context, route Route) {
	o.presenter.Redirect(WithSession(ctx, o.sessions.Current()), route)
}

func (o *Orchestrator) succeed(ctx context.Context, op, message string, event ActivityEvent) {
	o.logger.Info(message, "operation", op, "post_id", event.PostID, "user_id", event.UserID)
	o.notify(ctx, Notice{Level: NoticeSuccess, Operation: op, Message: message})
	event.Operation = op
	o.activity.record(ctx, event)
}

// block reports a guard rejection. Guard rejections never reach the
// classifier.
func (o *Orchestrator) block(ctx context.Context, op string, postID int64, err error) error {
	message := MsgNotLoggedIn
	if errors.Is(err, ErrNotOwner) {
		message = MsgNotOwner
	}

	o.logger.Debug("operation blocked", "operation", op, "post_id", postID, "error", err)
	o.notify(ctx, Notice{Level: NoticeWarning, Operation: op, Message: message, Err: err})
	o.redirect(ctx, RoutePostIndex)
	o.activity.record(ctx, ActivityEvent{
		EventType: ActivityEventOperationBlocked,
		Operation: op,
		PostID:    postID,
		UserID:    o.sessions.Current().UserID(),
	})
	return err
}

// failure describes how a failed call is surfaced.
type failure struct {
	op      string
	message string
	postID  int64
	// targeted marks calls against a single post: 404 means it is gone.
	targeted bool
	// fallback is the redirect for failures other than 404 and 401.
	fallback Route
	// credentials marks login style calls where 401 means bad credentials
	// rather than an expired session.
	credentials bool
	// textBody surfaces a plain text 400 body as the message.
	textBody bool
}

func (o *Orchestrator) fail(ctx context.Context, f failure, err error) *OperationError {
	opErr := o.classifier.Classify(f.op, err)

	notice := Notice{
		Level:     NoticeError,
		Operation: f.op,
		Message:   f.message,
		Messages:  opErr.Messages,
		Err:       opErr,
	}

	var redirect Route
	switch opErr.Kind {
	case KindUnauthorized:
		if f.credentials {
			break
		}
		if _, initErr := o.sessions.Initialize(ctx); initErr != nil {
			o.logger.Warn("session re-initialization failed", "operation", f.op, "error", initErr.Rich())
		}
		notice.Message = MsgSessionExpired
		notice.Messages = nil
		redirect = RouteLogin
	case KindNotFound:
		if f.targeted {
			notice.Message = MsgPostNotFound
			notice.Messages = nil
			redirect = RoutePostIndex
		}
	case KindValidation:
		if f.textBody && opErr.Body != "" {
			notice.Messages = []string{opErr.Body}
		}
	case KindNetwork:
		notice.Messages = []string{MsgNetworkError}
	}
	if redirect == "" {
		redirect = f.fallback
	}

	o.notify(ctx, notice)
	if redirect != "" {
		o.redirect(ctx, redirect)
	}

	event := failureEvent(f.op, opErr)
	event.PostID = f.postID
	event.UserID = o.sessions.Current().UserID()
	o.activity.record(ctx, event)

	return opErr
}

// invalid reports a local validation failure as a single batch notice.
func (o *Orchestrator) invalid(ctx context.Context, op, message string, err error) *OperationError {
	opErr := o.classifier.ClassifyValidation(op, err)
	o.notify(ctx, Notice{
		Level:     NoticeError,
		Operation: op,
		Message:   message,
		Messages:  opErr.Messages,
		Err:       opErr,
	})
	return opErr
}
