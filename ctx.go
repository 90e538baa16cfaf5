package postboard

import "context"

var sessionCtxKey = &contextKey{"session"}
var storeCtxKey = &contextKey{"session_store"}

type contextKey struct {
	name string
}

// WithSession sets the session snapshot in the given context
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the session snapshot in the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// WithSessionStore sets the SessionStore in the given context
func WithSessionStore(ctx context.Context, store *SessionStore) context.Context {
	return context.WithValue(ctx, storeCtxKey, store)
}

// SessionStoreFromContext finds the SessionStore in the context.
func SessionStoreFromContext(ctx context.Context) (*SessionStore, bool) {
	raw, ok := ctx.Value(storeCtxKey).(*SessionStore)
	return raw, ok && raw != nil
}

// CurrentSession returns the session visible from ctx: the snapshot when one
// was set, else the store's current session, else anonymous.
func CurrentSession(ctx context.Context) Session {
	if session, ok := SessionFromContext(ctx); ok {
		return session
	}
	if store, ok := SessionStoreFromContext(ctx); ok {
		return store.Current()
	}
	return AnonymousSession()
}
