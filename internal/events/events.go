// Package events defines domain events and the publishers that fan them out.
package events

import (
	"context"
	"errors"
	"time"

	"pixelfeed/internal/middleware"
	"pixelfeed/internal/observability"

	"github.com/google/uuid"
)

// Event types.
const (
	PostCreated   = "post.created"
	PostLiked     = "post.liked"
	PostCommented = "post.commented"
	UserFollowed  = "user.followed"
)

// Event is a domain event. RecipientID is set when the event notifies a specific user.
type Event struct {
	Type        string     `json:"type"`
	ActorID     uuid.UUID  `json:"actor_id"`
	RecipientID *uuid.UUID `json:"recipient_id,omitempty"`
	PostID      *uuid.UUID `json:"post_id,omitempty"`
	CommentID   *uuid.UUID `json:"comment_id,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// New builds an event of type t performed by actor.
func New(t string, actor uuid.UUID) Event {
	return Event{Type: t, ActorID: actor, OccurredAt: time.Now().UTC()}
}

// WithRecipient sets the notified user unless it is the actor.
func (e Event) WithRecipient(id uuid.UUID) Event {
	if id != e.ActorID {
		e.RecipientID = &id
	}
	return e
}

// WithPost sets the post the event refers to.
func (e Event) WithPost(id uuid.UUID) Event {
	e.PostID = &id
	return e
}

// WithComment sets the comment the event refers to.
func (e Event) WithComment(id uuid.UUID) Event {
	e.CommentID = &id
	return e
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every sink and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes e and logs failures. Event delivery never fails the caller.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		middleware.Logger.WarnContext(ctx, "event publish failed",
			"event_type", e.Type,
			"error", err,
		)
	}
}

func record(e Event, sink string, err error) error {
	observability.RecordEvent(e.Type, sink, err)
	return err
}
