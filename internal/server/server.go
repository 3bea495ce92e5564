package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rvermeulen/roomcast/internal/database"
	"github.com/rvermeulen/roomcast/internal/registry"
	"github.com/rvermeulen/roomcast/internal/stats"
)

// ChatServer composes the presence table, broker and registry for every
// live session in this process.
type ChatServer struct {
	log         *log.Logger
	db          database.RoomcastRepository
	registry    *registry.RoomRegistry
	presence    *PresenceTable
	broker      Broker
	stats       stats.StatsProvider
	clients     map[*Client]struct{}
	clientsLock sync.Mutex
}

func NewChatServer(logger *log.Logger, db database.RoomcastRepository, reg *registry.RoomRegistry,
	presence *PresenceTable, broker Broker, sp stats.StatsProvider) (*ChatServer, error) {
	sp.RegisterMetric(MetricActiveConnections)

	return &ChatServer{
		log:      logger,
		db:       db,
		registry: reg,
		presence: presence,
		broker:   broker,
		stats:    sp,
		clients:  make(map[*Client]struct{}),
	}, nil
}

// RegisterClient reconciles the user's persisted memberships into the
// presence table and admits the connection. Presence is rebuilt from
// durable state on every reconnect; a process restart loses it all
// until clients come back.
func (cs *ChatServer) RegisterClient(c *Client) error {
	channels, err := cs.registry.JoinedChannels(c.user.Uuid)
	if err != nil {
		return fmt.Errorf("fetch joined channels: %w", err)
	}

	for _, ch := range channels {
		cs.presence.Register(ch.Uuid, c)
		c.addChannel(ch.Uuid)
	}

	cs.clientsLock.Lock()
	cs.clients[c] = struct{}{}
	cs.clientsLock.Unlock()

	cs.stats.Incr(MetricActiveConnections)
	cs.log.Printf("registered connection from %q on %d channels", c.user.DisplayName, len(channels))
	return nil
}

// DeregisterClient removes every presence entry for the connection.
// Removal is unconditional so no dangling handle survives a close or a
// transport error.
func (cs *ChatServer) DeregisterClient(c *Client) {
	cs.presence.DeregisterAll(c)

	cs.clientsLock.Lock()
	_, known := cs.clients[c]
	delete(cs.clients, c)
	cs.clientsLock.Unlock()

	if known {
		cs.stats.Decr(MetricActiveConnections)
		cs.log.Printf("removed connection from %q", c.user.DisplayName)
	}
}

// NotifyJoined subscribes the user's live connections to a channel they
// just joined and tells its subscribers to refetch.
func (cs *ChatServer) NotifyJoined(accountUuid, channelUuid string) {
	for _, c := range cs.clientsForUser(accountUuid) {
		cs.presence.Register(channelUuid, c)
		c.addChannel(channelUuid)
	}

	cs.broker.Publish(channelUuid, refetchEnvelope(channelUuid))
}

// NotifyLeft drops the user's live connections from a channel they just
// left and tells remaining subscribers to refetch.
func (cs *ChatServer) NotifyLeft(accountUuid, channelUuid string) {
	for _, c := range cs.clientsForUser(accountUuid) {
		cs.presence.Deregister(channelUuid, c)
		c.delChannel(channelUuid)
	}

	cs.broker.Publish(channelUuid, refetchEnvelope(channelUuid))
}

func (cs *ChatServer) clientsForUser(accountUuid string) []*Client {
	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()

	var clients []*Client
	for c := range cs.clients {
		if c.user.Uuid == accountUuid {
			clients = append(clients, c)
		}
	}
	return clients
}

// Shutdown signals every live session to stop and waits for them to
// drain, bounded by ctx.
func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.clientsLock.Lock()
	for c := range cs.clients {
		c.stopClient()
	}
	cs.clientsLock.Unlock()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		cs.clientsLock.Lock()
		remaining := len(cs.clients)
		cs.clientsLock.Unlock()

		if remaining == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown: %d sessions still draining: %w", remaining, ctx.Err())
		case <-ticker.C:
		}
	}
}
