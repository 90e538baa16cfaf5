package postboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventSessionChanged    ActivityEventType = "session.changed"
	ActivityEventLoginSuccess      ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure      ActivityEventType = "auth.login.failure"
	ActivityEventLogout            ActivityEventType = "auth.logout"
	ActivityEventUserRegistered    ActivityEventType = "user.registered"
	ActivityEventPostCreated       ActivityEventType = "post.created"
	ActivityEventPostUpdated       ActivityEventType = "post.updated"
	ActivityEventPostDeleted       ActivityEventType = "post.deleted"
	ActivityEventOperationBlocked  ActivityEventType = "operation.blocked"
	ActivityEventOperationFailed   ActivityEventType = "operation.failed"
	ActivityEventOperationDeclined ActivityEventType = "operation.declined"
)

// ActivityEvent captures audit friendly information about an operation.
type ActivityEvent struct {
	ID         string
	EventType  ActivityEventType
	Operation  string
	UserID     int64
	PostID     int64
	Kind       Kind
	Status     int
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// activityRecorder stamps events and forwards them best effort: sink
// failures are logged and never fail the operation.
type activityRecorder struct {
	sink   ActivitySink
	logger Logger
	now    func() time.Time
}

func (r activityRecorder) record(ctx context.Context, event ActivityEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		now := r.now
		if now == nil {
			now = time.Now
		}
		event.OccurredAt = now()
	}

	if err := normalizeActivitySink(r.sink).Record(ctx, event); err != nil && r.logger != nil {
		r.logger.Warn("activity sink error", "error", err)
	}
}

func failureEvent(op string, opErr *OperationError) ActivityEvent {
	event := ActivityEvent{
		EventType: ActivityEventOperationFailed,
		Operation: op,
	}
	if opErr != nil {
		event.Kind = opErr.Kind
		event.Status = opErr.Status
		if opErr.RequestID != "" {
			event.Metadata = map[string]any{"request_id": opErr.RequestID}
		}
	}
	return event
}
