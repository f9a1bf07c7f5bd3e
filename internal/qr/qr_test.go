package qr

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeProducesPNG(t *testing.T) {
	encoded, err := Encode(Payload{
		TicketID:  "t-1",
		EventID:   "e-1",
		AccountID: "a-1",
		Quantity:  2,
		Timestamp: time.Now().UTC(),
	})
	assert.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	assert.NoError(t, err)

	// PNG magic bytes
	assert.True(t, len(raw) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestPayloadRoundTrip(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := Payload{
		TicketID:  "t-42",
		EventID:   "e-7",
		AccountID: "a-9",
		Quantity:  3,
		Timestamp: issued,
	}

	data, err := json.Marshal(p)
	assert.NoError(t, err)

	decoded, err := DecodePayload(data)
	assert.NoError(t, err)
	assert.Equal(t, "t-42", decoded.TicketID)
	assert.Equal(t, "e-7", decoded.EventID)
	assert.Equal(t, "a-9", decoded.AccountID)
	assert.Equal(t, 3, decoded.Quantity)
	assert.True(t, decoded.Timestamp.Equal(issued))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodePayload([]byte("not json"))
	assert.Error(t, err)
}
