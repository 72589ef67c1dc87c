package session

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"collabroom/internal/models"
	"collabroom/internal/utils"
)

// BusMessage is the envelope published on the redis channel for a room.
// Origin carries the publishing instance id so an instance can skip its own
// messages.
type BusMessage struct {
	Origin string         `json:"origin"`
	RoomID string         `json:"roomId"`
	Frame  models.WSFrame `json:"frame"`
}

// RedisBus fans relay frames out to the other instances serving the same
// rooms. Publishing is decoupled from the dispatcher loop through a buffered
// queue; when the queue is full the frame is dropped rather than stalling
// membership updates.
type RedisBus struct {
	rdb      *redis.Client
	log      *utils.Logger
	instance string
	out      chan BusMessage
}

// NewRedisBus connects to redis and verifies connectivity.
func NewRedisBus(ctx context.Context, addr string, db int, log *utils.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{
		rdb:      rdb,
		log:      log,
		instance: uuid.NewString(),
		out:      make(chan BusMessage, 256),
	}, nil
}

// Publish queues a frame for the room's channel. Never blocks.
func (b *RedisBus) Publish(roomID string, frame models.WSFrame) {
	select {
	case b.out <- BusMessage{Origin: b.instance, RoomID: roomID, Frame: frame}:
	default:
		b.log.Warn("bus queue full, dropping frame", "room", roomID, "event", frame.Event)
	}
}

// Run drains the publish queue and subscribes to every room channel,
// invoking fn for each message published by another instance. It returns
// when ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context, fn func(roomID string, frame models.WSFrame)) {
	go b.publishLoop(ctx)

	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	defer pubsub.Close()
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var bm BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				b.log.Warn("bus message unreadable", "error", err.Error())
				continue
			}
			if bm.Origin == b.instance || bm.RoomID == "" {
				continue
			}
			fn(bm.RoomID, bm.Frame)
		}
	}
}

func (b *RedisBus) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-b.out:
			raw, _ := json.Marshal(m)
			if err := b.rdb.Publish(ctx, channel(m.RoomID), raw).Err(); err != nil {
				b.log.Warn("bus publish failed", "room", m.RoomID, "error", err.Error())
			}
		}
	}
}

// Close shuts down the redis connection.
func (b *RedisBus) Close() { _ = b.rdb.Close() }

// channel namespacing for room pub/sub
func channel(roomID string) string { return "room:" + roomID }
