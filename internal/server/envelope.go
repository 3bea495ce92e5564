package server

import (
	"encoding/json"
	"time"

	"github.com/rvermeulen/roomcast/internal/types"
)

// OpCode identifies the kind of payload an Envelope carries. The set is
// closed: anything outside it is dropped with a diagnostic, never
// dispatched.
type OpCode uint8

const (
	// OpSend is a client's publish intent; the payload is a SendRequest.
	OpSend OpCode = 1
	// OpNewMessage notifies subscribers of a newly published message;
	// the payload is the full ChatMessage.
	OpNewMessage OpCode = 10
	// OpRefetch tells subscribers the named channel changed and local
	// state should be refetched; the payload is the channel uuid.
	OpRefetch OpCode = 11
	// OpAck confirms an accepted send; the payload is the channel uuid.
	OpAck OpCode = 12
	// OpError reports a failed request; the payload is a diagnostic.
	OpError OpCode = 13
)

// Envelope is the only message shape crossing the transport boundary.
type Envelope struct {
	OpCode  OpCode `json:"op_code"`
	Message string `json:"message"`
}

// SendRequest is the payload of an OpSend envelope.
type SendRequest struct {
	ChannelUuid string `json:"channel_uuid"`
	Body        string `json:"body"`
}

func decodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Envelope) encode() ([]byte, error) {
	return json.Marshal(e)
}

func newMessageEnvelope(msg types.ChatMessage) (*Envelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Envelope{OpCode: OpNewMessage, Message: string(payload)}, nil
}

func refetchEnvelope(channelUuid string) *Envelope {
	return &Envelope{OpCode: OpRefetch, Message: channelUuid}
}

func ackEnvelope(channelUuid string) *Envelope {
	return &Envelope{OpCode: OpAck, Message: channelUuid}
}

func errorEnvelope(diag string) *Envelope {
	return &Envelope{OpCode: OpError, Message: diag}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
