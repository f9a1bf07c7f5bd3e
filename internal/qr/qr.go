package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the scannable data embedded in every issued ticket. The door
// scanner decodes it to look the ticket up for verification.
type Payload struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	AccountID string    `json:"user_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Encode renders the payload as a QR PNG and returns it base64-encoded for
// inline transport in JSON responses.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}

// DecodePayload parses the JSON content carried by a scanned code
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return &p, nil
}
