package sale

import (
	"encoding/json"
	"errors"
	"time"
)

// Channels is the closed set of values a sale can be attributed to.
var Channels = []string{"web", "in_store", "call_center", "marketplace"}

// Sale is the event published to Kafka and projected into Postgres.
// Field order matches the wire payload. ts is UTC with second precision.
type Sale struct {
	ID        string    `json:"id"`
	TS        time.Time `json:"ts"`
	StoreID   int       `json:"store_id"`
	AmountUSD float64   `json:"amount_usd"`
	Channel   string    `json:"channel"`
}

var (
	ErrMissingID        = errors.New("sale: missing id")
	ErrMissingTimestamp = errors.New("sale: missing ts")
)

// Decode parses a wire payload. Unknown fields are ignored so producers can
// add fields without breaking older consumers. Only the fields ingestion
// depends on are validated; store_id may be any integer and channel any text.
func Decode(payload []byte) (Sale, error) {
	var s Sale
	if err := json.Unmarshal(payload, &s); err != nil {
		return Sale{}, err
	}
	if s.ID == "" {
		return Sale{}, ErrMissingID
	}
	if s.TS.IsZero() {
		return Sale{}, ErrMissingTimestamp
	}
	return s, nil
}

// Encode serializes a sale to its wire payload.
func (s Sale) Encode() ([]byte, error) {
	return json.Marshal(s)
}
