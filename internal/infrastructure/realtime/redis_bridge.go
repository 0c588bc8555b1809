package realtime

import (
	"context"
	"encoding/json"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bridgePrefix = "chat:realtime:"

type bridgeEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RedisBridge relays channel events through Redis pub/sub so every API
// replica delivers to its own sockets. Publish goes to Redis; Run feeds
// received events into the local Router.
type RedisBridge struct {
	client *redis.Client
	local  *Router
	log    *zap.Logger
}

func NewRedisBridge(client *redis.Client, local *Router, log *zap.Logger) *RedisBridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBridge{client: client, local: local, log: log}
}

func (b *RedisBridge) Publish(ctx context.Context, channel, event string, payload []byte) error {
	msg, err := json.Marshal(bridgeEnvelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, bridgePrefix+channel, msg).Err()
}

// Run blocks relaying events until ctx is canceled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, bridgePrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			b.relay(ctx, m.Channel, m.Payload)
		}
	}
}

func (b *RedisBridge) relay(ctx context.Context, redisChannel, payload string) {
	channel := strings.TrimPrefix(redisChannel, bridgePrefix)
	var env bridgeEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Warn("realtime bridge: bad envelope", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := b.local.Publish(ctx, channel, env.Event, env.Data); err != nil {
		b.log.Warn("realtime bridge: local publish", zap.String("channel", channel), zap.Error(err))
	}
}
