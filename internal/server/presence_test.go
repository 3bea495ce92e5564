package server

import (
	"testing"

	"github.com/rvermeulen/roomcast/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPresenceTable_RegisterAndSnapshot(t *testing.T) {
	pt := NewPresenceTable()

	c1 := &Client{user: types.UserSnapshot{Uuid: "user-1"}}
	c2 := &Client{user: types.UserSnapshot{Uuid: "user-2"}}

	pt.Register("chan-a", c1)
	pt.Register("chan-a", c2)
	pt.Register("chan-b", c1)

	assert.Len(t, pt.Snapshot("chan-a"), 2, "expected both handles on chan-a")
	assert.Len(t, pt.Snapshot("chan-b"), 1, "expected one handle on chan-b")
	assert.Nil(t, pt.Snapshot("chan-c"), "expected no handles on unknown channel")
	assert.Equal(t, 2, pt.Subscribers("chan-a"))
}

func TestPresenceTable_MultipleConnectionsPerUser(t *testing.T) {
	pt := NewPresenceTable()

	// same user, two live connections
	c1 := &Client{user: types.UserSnapshot{Uuid: "user-1"}}
	c2 := &Client{user: types.UserSnapshot{Uuid: "user-1"}}

	pt.Register("chan-a", c1)
	pt.Register("chan-a", c2)

	assert.Len(t, pt.Snapshot("chan-a"), 2, "expected one entry per handle, not per user")
}

func TestPresenceTable_Deregister(t *testing.T) {
	pt := NewPresenceTable()

	c := &Client{user: types.UserSnapshot{Uuid: "user-1"}}
	pt.Register("chan-a", c)
	pt.Deregister("chan-a", c)

	assert.Equal(t, 0, pt.Subscribers("chan-a"), "expected no handles after deregister")

	// deregistering an unknown handle is a no-op
	pt.Deregister("chan-a", c)
	pt.Deregister("chan-x", c)
}

func TestPresenceTable_DeregisterAll(t *testing.T) {
	pt := NewPresenceTable()

	c1 := &Client{user: types.UserSnapshot{Uuid: "user-1"}}
	c2 := &Client{user: types.UserSnapshot{Uuid: "user-2"}}

	pt.Register("chan-a", c1)
	pt.Register("chan-b", c1)
	pt.Register("chan-c", c1)
	pt.Register("chan-a", c2)

	pt.DeregisterAll(c1)

	assert.NotContains(t, pt.Snapshot("chan-a"), c1, "expected no dangling handle on chan-a")
	assert.Equal(t, 0, pt.Subscribers("chan-b"), "expected no dangling handle on chan-b")
	assert.Equal(t, 0, pt.Subscribers("chan-c"), "expected no dangling handle on chan-c")
	assert.Len(t, pt.Snapshot("chan-a"), 1, "expected the other user's handle to survive")
}
