package server

import (
	"encoding/json"
	"testing"

	"github.com/rvermeulen/roomcast/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_decodeEnvelope(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		env, err := decodeEnvelope([]byte(`{"op_code":1,"message":"{\"channel_uuid\":\"chan-1\",\"body\":\"hi\"}"}`))
		require.NoError(t, err)
		assert.Equal(t, OpSend, env.OpCode)

		var req SendRequest
		require.NoError(t, json.Unmarshal([]byte(env.Message), &req))
		assert.Equal(t, "chan-1", req.ChannelUuid)
		assert.Equal(t, "hi", req.Body)
	})

	t.Run("undecodable frame", func(t *testing.T) {
		_, err := decodeEnvelope([]byte("not json"))
		assert.Error(t, err, "expected decode error for malformed frame")
	})
}

func Test_newMessageEnvelope(t *testing.T) {
	msg := types.ChatMessage{
		Uuid:        "msg-1",
		ChannelUuid: "chan-1",
		Sender:      types.UserSnapshot{Uuid: "user-1", DisplayName: "alice"},
		Body:        "hi",
		CreatedAt:   Now(),
	}

	env, err := newMessageEnvelope(msg)
	require.NoError(t, err)
	assert.Equal(t, OpNewMessage, env.OpCode)

	var decoded types.ChatMessage
	require.NoError(t, json.Unmarshal([]byte(env.Message), &decoded))
	assert.Equal(t, msg, decoded, "expected payload to carry the full message")
}

func Test_envelopeHelpers(t *testing.T) {
	assert.Equal(t, &Envelope{OpCode: OpRefetch, Message: "chan-1"}, refetchEnvelope("chan-1"))
	assert.Equal(t, &Envelope{OpCode: OpAck, Message: "chan-1"}, ackEnvelope("chan-1"))
	assert.Equal(t, &Envelope{OpCode: OpError, Message: "boom"}, errorEnvelope("boom"))
}
