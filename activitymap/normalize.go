package activitymap

import (
	"context"
	"strings"
	"time"

	"github.com/secure-blog/blog"
)

const (
	// MetadataKeyActorType stores the actor type derived from blog.ActorRef.Type.
	MetadataKeyActorType = "actor_type"
)

const (
	ObjectTypeUser = "user"
	ObjectTypePost = "post"

	ChannelAuth  = "auth"
	ChannelPosts = "posts"

	defaultActorID = "anonymous"
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
	channel          string
	actorFallback    string
	objectIDResolver func(blog.ActivityEvent) string
	now              func() time.Time
}

// Normalize converts a blog.ActivityEvent into a generic normalized shape.
// Post events map to the post object and the posts channel, everything
// else to the user object and the auth channel.
func Normalize(event blog.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.Actor.ID),
		strings.TrimSpace(event.UserID),
		options.actorFallback,
	)

	objectType, channel := ObjectTypeUser, ChannelAuth
	if strings.TrimSpace(event.PostID) != "" || strings.HasPrefix(string(event.EventType), "post.") {
		objectType, channel = ObjectTypePost, ChannelPosts
	}
	if options.channel != "" {
		channel = options.channel
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = options.now()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: objectType,
		ObjectID:   resolveObjectID(event, objectType, options.objectIDResolver),
		Channel:    channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt.UTC(),
	}
}

// WithChannel forces the channel for normalized records.
func WithChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithObjectIDResolver overrides object-id extraction from ActivityEvent.
func WithObjectIDResolver(resolver func(blog.ActivityEvent) string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.objectIDResolver = resolver
	}
}

// WithActorFallback sets the final actor-id fallback when actor/user ids are empty.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		if opts == nil {
			return
		}
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// WithClock sets the time source used for events without OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(opts *normalizeOptions) {
		if opts == nil || now == nil {
			return
		}
		opts.now = now
	}
}

// NewLogSink returns an ActivitySink that writes each event in normalized
// form as a single info line.
func NewLogSink(logger blog.Logger, opts ...Option) blog.ActivitySink {
	return blog.ActivitySinkFunc(func(_ context.Context, event blog.ActivityEvent) error {
		if logger == nil {
			return nil
		}
		n := Normalize(event, opts...)
		logger.Info("activity",
			"actor_id", n.ActorID,
			"verb", n.Verb,
			"object_type", n.ObjectType,
			"object_id", n.ObjectID,
			"channel", n.Channel,
			"occurred_at", n.OccurredAt,
			"metadata", n.Metadata,
		)
		return nil
	})
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		actorFallback: defaultActorID,
		now:           time.Now,
	}
}

func resolveObjectID(event blog.ActivityEvent, objectType string, resolver func(blog.ActivityEvent) string) string {
	if resolver != nil {
		return strings.TrimSpace(resolver(event))
	}
	if objectType == ObjectTypePost {
		return strings.TrimSpace(event.PostID)
	}
	return strings.TrimSpace(event.UserID)
}

func normalizeMetadata(event blog.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)

	if actorType := strings.TrimSpace(event.Actor.Type); actorType != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		if _, exists := metadata[MetadataKeyActorType]; !exists {
			metadata[MetadataKeyActorType] = actorType
		}
	}

	return metadata
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
