// Package notifications provides real-time delivery of events to connected clients.
package notifications

import (
	"context"
	"log"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish events into Redis channels.
// All methods are no-ops when Redis is unavailable.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

// PublishCircleMessage publishes a circle chat message to the circle's channel.
func (n *Notifier) PublishCircleMessage(ctx context.Context, circleID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, CircleChannel(circleID), payload).Err()
}

// StartPatternSubscriber subscribes to the user and broadcast channels and
// calls onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	return n.subscribe(ctx, onMessage, "notifications:user:*", "notifications:broadcast")
}

// StartCircleSubscriber subscribes to all circle message channels.
func (n *Notifier) StartCircleSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	return n.subscribe(ctx, onMessage, "circles:chat:*")
}

func (n *Notifier) subscribe(
	ctx context.Context, onMessage func(channel string, payload string), patterns ...string,
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, patterns...)
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
							log.Printf("PANIC in redis subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

// CircleChannel derives the Redis channel name for a circle's message stream.
func CircleChannel(circleID uint) string {
	return "circles:chat:" + strconv.FormatUint(uint64(circleID), 10)
}

// ParseCircleChannel extracts the circle ID from a circle channel name.
// Returns 0 when the channel does not match.
func ParseCircleChannel(channel string) uint {
	const prefix = "circles:chat:"
	if !strings.HasPrefix(channel, prefix) {
		return 0
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(channel, prefix), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
