package activitymap

import (
	"strconv"
	"strings"
	"time"

	postboard "github.com/goliatone/go-postboard"
)

const (
	// MetadataKeyEventID stores the source event id.
	MetadataKeyEventID = "event_id"
	// MetadataKeyOperation stores the operation name, e.g. "post.update".
	MetadataKeyOperation = "operation"
	// MetadataKeyKind stores the failure kind for failed operations.
	MetadataKeyKind = "kind"
	// MetadataKeyStatus stores the HTTP status when the server answered.
	MetadataKeyStatus = "status"
)

const (
	defaultChannel = "postboard"
	defaultActorID = "anonymous"

	objectTypePost = "post"
	objectTypeUser = "user"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	actorFallback string
	now           func() time.Time
}

// Normalize converts a postboard.ActivityEvent into a generic record.
// Events about a post use the post as object, everything else the user.
func Normalize(event postboard.ActivityEvent, opts ...Option) Normalized {
	options := normalizeOptions{
		channel:       defaultChannel,
		actorFallback: defaultActorID,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := options.actorFallback
	if event.UserID > 0 {
		actorID = formatID(event.UserID)
	}

	objectType, objectID := objectOf(event)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

// NormalizeAll maps a batch of events in order.
func NormalizeAll(events []postboard.ActivityEvent, opts ...Option) []Normalized {
	out := make([]Normalized, 0, len(events))
	for _, event := range events {
		out = append(out, Normalize(event, opts...))
	}
	return out
}

// WithDefaultChannel sets the channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if channel = strings.TrimSpace(channel); channel != "" {
			opts.channel = channel
		}
	}
}

// WithActorFallback sets the actor id used when no user is signed in.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if actorID = strings.TrimSpace(actorID); actorID != "" {
			opts.actorFallback = actorID
		}
	}
}

// WithClock sets the clock used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(opts *normalizeOptions) {
		if now != nil {
			opts.now = now
		}
	}
}

func objectOf(event postboard.ActivityEvent) (string, string) {
	switch {
	case event.PostID > 0:
		return objectTypePost, formatID(event.PostID)
	case event.UserID > 0:
		return objectTypeUser, formatID(event.UserID)
	default:
		return "", ""
	}
}

func normalizeMetadata(event postboard.ActivityEvent) map[string]any {
	metadata := make(map[string]any, len(event.Metadata)+4)
	for key, value := range event.Metadata {
		metadata[key] = value
	}

	if event.ID != "" {
		metadata[MetadataKeyEventID] = event.ID
	}
	if event.Operation != "" {
		metadata[MetadataKeyOperation] = event.Operation
	}
	if event.Kind != "" {
		metadata[MetadataKeyKind] = string(event.Kind)
	}
	if event.Status != 0 {
		metadata[MetadataKeyStatus] = event.Status
	}

	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
