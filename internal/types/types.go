package types

import (
	"time"
)

// UserSnapshot is a denormalized, read-only copy of a user's identity.
// It is attached to rooms and messages so historical records stay stable
// if the user's profile changes later.
type UserSnapshot struct {
	Uuid        string `json:"uuid"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

type Room struct {
	Uuid      string         `json:"uuid"`
	Name      string         `json:"name"`
	Members   []UserSnapshot `json:"members"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// ChannelRef is a room reference returned by joined-channel listings.
type ChannelRef struct {
	Uuid string `json:"uuid"`
	Name string `json:"name"`
}

// ChatMessage is immutable once persisted. Messages in a channel are
// ordered by CreatedAt, ties broken by Uuid.
type ChatMessage struct {
	Uuid        string       `json:"uuid"`
	ChannelUuid string       `json:"channel_uuid"`
	Sender      UserSnapshot `json:"sender"`
	Body        string       `json:"body"`
	CreatedAt   time.Time    `json:"created_at"`
}
