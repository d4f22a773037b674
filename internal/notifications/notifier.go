// Package notifications provides real-time notification delivery over Redis pub/sub
// and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"pixelfeed/internal/events"
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// Notifier publishes recipient events into per-user Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}

// ParseUserChannel extracts the user id from a channel produced by UserChannel.
func ParseUserChannel(channel string) (uuid.UUID, error) {
	if !strings.HasPrefix(channel, userChannelPrefix) {
		return uuid.Nil, fmt.Errorf("invalid notification channel: %s", channel)
	}
	return uuid.Parse(strings.TrimPrefix(channel, userChannelPrefix))
}

// Publish implements events.Publisher. Events without a recipient are not delivered.
func (n *Notifier) Publish(ctx context.Context, e events.Event) error {
	if n.rdb == nil || e.RecipientID == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	err = n.rdb.Publish(ctx, UserChannel(*e.RecipientID), payload).Err()
	observability.RecordEvent(e.Type, "redis", err)
	return err
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage for each
// incoming message until ctx is done.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
