package database

import "time"

type Account struct {
	Uuid         string
	DisplayName  string
	EmailAddress string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
}

type Room struct {
	Uuid      string
	Name      string
	CreatedAt time.Time
}

// Message rows carry a denormalized sender snapshot so history is not
// affected by later profile changes.
type Message struct {
	Uuid         string
	ChannelUuid  string
	SenderUuid   string
	SenderName   string
	SenderAvatar string
	Body         string
	CreatedAt    time.Time
}

type CreateAccountParams struct {
	Uuid         string
	DisplayName  string
	EmailAddress string
	PasswordHash string
	Avatar       string
}
