package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const relayChannel = "roomcast:fanout"

// relayFrame carries a published envelope between server instances over
// Redis pub/sub. Origin identifies the publishing instance so it skips
// its own relayed frames instead of delivering them twice.
type relayFrame struct {
	Origin      string   `json:"origin"`
	ChannelUuid string   `json:"channel_uuid"`
	Envelope    Envelope `json:"envelope"`
}

// RedisBroker bridges a LocalBroker across server instances: presence
// entries on any instance receive messages published on any other.
// Required once more than one process serves the same room.
type RedisBroker struct {
	local  *LocalBroker
	client *redis.Client
	origin string
	log    *log.Logger
	sub    *redis.PubSub
	done   chan struct{}
}

func NewRedisBroker(logger *log.Logger, local *LocalBroker, client *redis.Client) *RedisBroker {
	return &RedisBroker{
		local:  local,
		client: client,
		origin: uuid.NewString(),
		log:    logger,
		done:   make(chan struct{}),
	}
}

// Run subscribes to the relay channel and delivers remote publishes to
// local presence entries until Stop is called.
func (b *RedisBroker) Run() {
	b.sub = b.client.Subscribe(context.Background(), relayChannel)

	go func() {
		defer close(b.done)
		for msg := range b.sub.Channel() {
			b.handleRelay([]byte(msg.Payload))
		}
	}()
}

func (b *RedisBroker) handleRelay(payload []byte) {
	var frame relayFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		b.log.Println("bridge: decode relay frame:", err)
		return
	}

	if frame.Origin == b.origin {
		// already delivered locally at publish time
		return
	}

	b.local.Publish(frame.ChannelUuid, &frame.Envelope)
}

func (b *RedisBroker) Publish(channelUuid string, env *Envelope) int {
	delivered := b.local.Publish(channelUuid, env)

	frame := relayFrame{
		Origin:      b.origin,
		ChannelUuid: channelUuid,
		Envelope:    *env,
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		b.log.Println("bridge: encode relay frame:", err)
		return delivered
	}

	if err := b.client.Publish(context.Background(), relayChannel, payload).Err(); err != nil {
		b.log.Println("bridge: relay publish:", err)
	}

	return delivered
}

func (b *RedisBroker) Stop() {
	if b.sub == nil {
		return
	}
	b.sub.Close()
	<-b.done
}
