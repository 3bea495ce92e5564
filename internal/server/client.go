package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rvermeulen/roomcast/internal/database"
	"github.com/rvermeulen/roomcast/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendQueueSize  = 256
)

// Client is the per-connection session handler. It owns its connection
// handle exclusively; the PresenceTable only holds lookup references to
// it, so cleanup on disconnect is deterministic.
type Client struct {
	conn        *websocket.Conn
	chatServer  *ChatServer
	log         *log.Logger
	user        types.UserSnapshot
	send        chan *Envelope
	channels    map[string]struct{}
	channelLock sync.RWMutex
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewClient(user types.UserSnapshot, conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		user:       user,
		send:       make(chan *Envelope, sendQueueSize),
		channels:   make(map[string]struct{}),
		stop:       make(chan struct{}),
	}
}

// Write drains broker deliveries onto the transport until the session
// ends.
func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := env.encode()
			if err != nil {
				c.log.Println("failed to encode envelope:", err)
				continue
			}

			if !c.writeFrame(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeFrame(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

// Read decodes inbound envelopes and dispatches them until the
// connection terminates, then tears the session down.
func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		env, err := decodeEnvelope(raw)
		if err != nil {
			// malformed frames are dropped, the session continues
			c.log.Println("error parsing envelope:", err)
			c.queueEnvelope(errorEnvelope("invalid envelope"))
			continue
		}

		c.dispatch(env)
	}
}

func (c *Client) dispatch(env *Envelope) {
	switch env.OpCode {
	case OpSend:
		c.handleSend(env)
	default:
		c.log.Printf("ignoring envelope with unknown op code %d from %q", env.OpCode, c.user.DisplayName)
	}
}

// handleSend persists the message before publishing it, so the durable
// history never lags behind a delivered broadcast.
func (c *Client) handleSend(env *Envelope) {
	var req SendRequest
	if err := json.Unmarshal([]byte(env.Message), &req); err != nil {
		c.log.Println("error parsing send request:", err)
		c.queueEnvelope(errorEnvelope("invalid send payload"))
		return
	}

	if !c.subscribed(req.ChannelUuid) {
		c.queueEnvelope(errorEnvelope("not subscribed to channel"))
		return
	}

	msg := types.ChatMessage{
		Uuid:        uuid.NewString(),
		ChannelUuid: req.ChannelUuid,
		Sender:      c.user,
		Body:        req.Body,
		CreatedAt:   Now(),
	}

	if err := c.chatServer.db.CreateMessage(database.Message{
		Uuid:         msg.Uuid,
		ChannelUuid:  msg.ChannelUuid,
		SenderUuid:   msg.Sender.Uuid,
		SenderName:   msg.Sender.DisplayName,
		SenderAvatar: msg.Sender.Avatar,
		Body:         msg.Body,
		CreatedAt:    msg.CreatedAt,
	}); err != nil {
		c.log.Println("error saving message:", err)
		c.queueEnvelope(errorEnvelope("internal server error"))
		return
	}

	c.queueEnvelope(ackEnvelope(req.ChannelUuid))

	out, err := newMessageEnvelope(msg)
	if err != nil {
		c.log.Println("error encoding message envelope:", err)
		c.chatServer.broker.Publish(req.ChannelUuid, refetchEnvelope(req.ChannelUuid))
		return
	}

	c.chatServer.broker.Publish(req.ChannelUuid, out)
}

// queueEnvelope places an envelope on the outbound queue without ever
// blocking the caller. When the queue is full the oldest queued
// envelope is shed to make room.
func (c *Client) queueEnvelope(env *Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
	}

	select {
	case old := <-c.send:
		c.log.Printf("send queue full for %q, shedding oldest envelope (op %d)", c.user.DisplayName, old.OpCode)
	default:
	}

	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

func (c *Client) writeFrame(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write frame: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.chatServer.DeregisterClient(c)
	c.stopClient()
}

func (c *Client) addChannel(channelUuid string) {
	c.channelLock.Lock()
	defer c.channelLock.Unlock()

	c.channels[channelUuid] = struct{}{}
}

func (c *Client) delChannel(channelUuid string) {
	c.channelLock.Lock()
	defer c.channelLock.Unlock()

	delete(c.channels, channelUuid)
}

func (c *Client) subscribed(channelUuid string) bool {
	c.channelLock.RLock()
	defer c.channelLock.RUnlock()

	_, ok := c.channels[channelUuid]
	return ok
}
