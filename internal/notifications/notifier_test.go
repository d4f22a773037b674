package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"pixelfeed/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestUserChannelRoundTrip(t *testing.T) {
	id := uuid.New()
	parsed, err := ParseUserChannel(UserChannel(id))
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseUserChannel("chat:conv:1")
	assert.Error(t, err)
	_, err = ParseUserChannel("notifications:user:not-a-uuid")
	assert.Error(t, err)
}

func TestNotifier_DeliversRecipientEventsToHub(t *testing.T) {
	rdb := setupRedis(t)
	notifier := NewNotifier(rdb)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	author := uuid.New()
	client, err := hub.Register(author, nil)
	require.NoError(t, err)

	liker := uuid.New()
	postID := uuid.New()
	event := events.New(events.PostLiked, liker).WithRecipient(author).WithPost(postID)
	require.NoError(t, notifier.Publish(ctx, event))

	var received []byte
	require.Eventually(t, func() bool {
		select {
		case received = <-client.Send:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(received, &decoded))
	assert.Equal(t, events.PostLiked, decoded.Type)
	assert.Equal(t, liker, decoded.ActorID)
	require.NotNil(t, decoded.PostID)
	assert.Equal(t, postID, *decoded.PostID)
}

func TestNotifier_SkipsEventsWithoutRecipient(t *testing.T) {
	rdb := setupRedis(t)
	notifier := NewNotifier(rdb)

	sub := rdb.PSubscribe(context.Background(), "notifications:user:*")
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	actor := uuid.New()
	require.NoError(t, notifier.Publish(context.Background(), events.New(events.PostCreated, actor)))
	require.NoError(t, notifier.Publish(context.Background(), events.New(events.PostLiked, actor).WithRecipient(actor)))

	assert.Never(t, func() bool {
		select {
		case <-sub.Channel():
			return true
		default:
			return false
		}
	}, 10*testPollInterval, testPollInterval)
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.Publish(context.Background(), events.New(events.UserFollowed, uuid.New()).WithRecipient(uuid.New())))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}
