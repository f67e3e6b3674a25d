package blog

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventRegistered   ActivityEventType = "auth.register.success"
	ActivityEventLoginSuccess ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure ActivityEventType = "auth.login.failure"
	ActivityEventPostCreated  ActivityEventType = "post.created"
	ActivityEventPostUpdated  ActivityEventType = "post.updated"
	ActivityEventPostDeleted  ActivityEventType = "post.deleted"
)

// ActorRef identifies who performed an action
type ActorRef struct {
	ID   string
	Type string
}

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	PostID     string
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

// NewLoggerActivitySink writes every event as an info log line
func NewLoggerActivitySink(logger Logger) ActivitySink {
	logger = resolveLogger("blog.activity", logger)
	return ActivitySinkFunc(func(_ context.Context, event ActivityEvent) error {
		args := []any{
			"event", string(event.EventType),
			"actor_id", event.Actor.ID,
			"actor_type", event.Actor.Type,
			"occurred_at", event.OccurredAt,
		}
		if event.UserID != "" {
			args = append(args, "user_id", event.UserID)
		}
		if event.PostID != "" {
			args = append(args, "post_id", event.PostID)
		}
		for k, v := range event.Metadata {
			args = append(args, k, v)
		}
		logger.Info("activity", args...)
		return nil
	})
}

func actorFromUser(user *User) ActorRef {
	if user == nil {
		return ActorRef{Type: "anonymous"}
	}
	return ActorRef{ID: formatID(user.ID), Type: string(user.Role)}
}

func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		logger.Warn("activity sink record error", "error", err, "event", string(event.EventType))
	}
}
