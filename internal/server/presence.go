package server

import (
	"sync"
)

// PresenceTable tracks which live connections are subscribed to which
// channel in this process. It holds lookup references only; every
// handle is owned by the Client that created it, and removal on
// disconnect is unconditional. Nothing here is persisted: presence is
// rebuilt from durable membership on every reconnect.
type PresenceTable struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
}

func NewPresenceTable() *PresenceTable {
	return &PresenceTable{
		channels: make(map[string]map[*Client]struct{}),
	}
}

func (pt *PresenceTable) Register(channelUuid string, c *Client) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	handles, ok := pt.channels[channelUuid]
	if !ok {
		handles = make(map[*Client]struct{})
		pt.channels[channelUuid] = handles
	}
	handles[c] = struct{}{}
}

func (pt *PresenceTable) Deregister(channelUuid string, c *Client) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.remove(channelUuid, c)
}

// DeregisterAll removes the handle from every channel it appears in.
func (pt *PresenceTable) DeregisterAll(c *Client) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for channelUuid := range pt.channels {
		pt.remove(channelUuid, c)
	}
}

func (pt *PresenceTable) remove(channelUuid string, c *Client) {
	handles, ok := pt.channels[channelUuid]
	if !ok {
		return
	}

	delete(handles, c)
	if len(handles) == 0 {
		delete(pt.channels, channelUuid)
	}
}

// Snapshot returns the handles currently present on the channel. The
// returned slice is a copy; callers deliver against it without holding
// the table's lock.
func (pt *PresenceTable) Snapshot(channelUuid string) []*Client {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	handles := pt.channels[channelUuid]
	if len(handles) == 0 {
		return nil
	}

	snapshot := make([]*Client, 0, len(handles))
	for c := range handles {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Subscribers reports how many handles are present on the channel.
func (pt *PresenceTable) Subscribers(channelUuid string) int {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	return len(pt.channels[channelUuid])
}
