package postboard

import (
	"context"
	"sync"
	"time"
)

// Operation names used in classified errors, notices and activity events.
const (
	OpInitializeSession = "session.initialize"
	OpLogin             = "session.login"
	OpLogout            = "session.logout"
	OpRegister          = "user.register"
	OpListPosts         = "post.list"
	OpShowPost          = "post.show"
	OpCreatePost        = "post.create"
	OpUpdatePost        = "post.update"
	OpDeletePost        = "post.delete"
)

// SessionStore owns the client's Session. It is the only place the session
// changes and all transitions go through Initialize, Login and Logout.
// Readers get snapshots and never observe a partial update.
type SessionStore struct {
	api        SessionAPI
	classifier *Classifier
	logger     Logger
	activity   activityRecorder

	mu        sync.RWMutex
	current   Session
	listeners []func(Session)
}

// SessionOption customizes a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionLogger sets the store logger.
func WithSessionLogger(logger Logger) SessionOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
			s.activity.logger = logger
		}
	}
}

// WithSessionLoggerProvider resolves the store logger from provider.
func WithSessionLoggerProvider(provider LoggerProvider) SessionOption {
	return func(s *SessionStore) {
		_, s.logger = ResolveLogger("postboard.session", provider, s.logger)
		s.activity.logger = s.logger
	}
}

// WithSessionClassifier sets the classifier used for failed calls.
func WithSessionClassifier(c *Classifier) SessionOption {
	return func(s *SessionStore) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithSessionActivitySink sets the sink for login and logout events.
func WithSessionActivitySink(sink ActivitySink) SessionOption {
	return func(s *SessionStore) {
		s.activity.sink = normalizeActivitySink(sink)
	}
}

// WithSessionClock injects a custom clock (useful for tests).
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(s *SessionStore) {
		if clock != nil {
			s.activity.now = clock
		}
	}
}

// NewSessionStore creates an anonymous store backed by api.
func NewSessionStore(api SessionAPI, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		api:     api,
		logger:  noopLogger{},
		current: AnonymousSession(),
		activity: activityRecorder{
			sink:   noopActivitySink{},
			logger: noopLogger{},
			now:    time.Now,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.classifier == nil {
		s.classifier = NewClassifier(WithClassifierLogger(s.logger))
	}

	return s
}

// Current returns a snapshot of the session.
func (s *SessionStore) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether a user is logged in.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Current().Authenticated()
}

// OnChange registers fn to receive the session after every completed
// transition. Listeners run synchronously on the caller's goroutine.
func (s *SessionStore) OnChange(fn func(Session)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Initialize asks the server who the cookie belongs to. A 401 lands the
// store anonymous without an error. Any other failure also lands anonymous
// and the classified error is returned.
func (s *SessionStore) Initialize(ctx context.Context) (Session, *OperationError) {
	session, opErr := s.fetch(ctx, OpInitializeSession)
	if opErr != nil && opErr.Kind == KindUnauthorized {
		opErr = nil
	}
	if opErr != nil {
		s.logger.Warn("session initialization failed", "error", opErr.Rich())
	}

	s.set(ctx, OpInitializeSession, session)
	return session, opErr
}

// Login submits creds and, on success, re-initializes from the server. On
// failure the session is left unchanged.
func (s *SessionStore) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := s.api.Login(ctx, creds); err != nil {
		opErr := s.classifier.Classify(OpLogin, err)
		s.activity.record(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Operation: OpLogin,
			Kind:      opErr.Kind,
			Status:    opErr.Status,
		})
		return s.Current(), opErr
	}

	session, opErr := s.fetch(ctx, OpLogin)
	s.set(ctx, OpLogin, session)
	if opErr != nil {
		s.activity.record(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Operation: OpLogin,
			Kind:      opErr.Kind,
			Status:    opErr.Status,
		})
		return session, opErr
	}

	s.logger.Info("logged in", "user_id", session.UserID())
	s.activity.record(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Operation: OpLogin,
		UserID:    session.UserID(),
	})
	return session, nil
}

// Logout ends the server session. On failure the session is unchanged.
func (s *SessionStore) Logout(ctx context.Context) error {
	previous := s.Current()
	if err := s.api.Logout(ctx); err != nil {
		return s.classifier.Classify(OpLogout, err)
	}

	s.set(ctx, OpLogout, AnonymousSession())
	s.logger.Info("logged out", "user_id", previous.UserID())
	s.activity.record(ctx, ActivityEvent{
		EventType: ActivityEventLogout,
		Operation: OpLogout,
		UserID:    previous.UserID(),
	})
	return nil
}

func (s *SessionStore) fetch(ctx context.Context, op string) (Session, *OperationError) {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return AnonymousSession(), s.classifier.Classify(op, err)
	}
	session := NewSession(user)
	if !session.Authenticated() {
		return session, s.classifier.ClassifyDecode(op, nil, errUserWithoutID)
	}
	return session, nil
}

// set replaces the session and notifies listeners. A session changed event
// is recorded only when the user or the authenticated state differs.
func (s *SessionStore) set(ctx context.Context, op string, session Session) {
	s.mu.Lock()
	previous := s.current
	s.current = session
	listeners := append([]func(Session){}, s.listeners...)
	s.mu.Unlock()

	if previous.UserID() != session.UserID() || previous.Authenticated() != session.Authenticated() {
		s.activity.record(ctx, ActivityEvent{
			EventType: ActivityEventSessionChanged,
			Operation: op,
			UserID:    session.UserID(),
		})
	}

	for _, fn := range listeners {
		fn(session)
	}
}
