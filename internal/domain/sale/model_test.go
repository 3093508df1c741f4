package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWirePayload(t *testing.T) {
	payload := []byte(`{"id":"a1b2","ts":"2026-08-29T12:00:05Z","store_id":142,"amount_usd":19.99,"channel":"web"}`)

	s, err := Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, "a1b2", s.ID)
	assert.Equal(t, time.Date(2026, 8, 29, 12, 0, 5, 0, time.UTC), s.TS.UTC())
	assert.Equal(t, 142, s.StoreID)
	assert.Equal(t, 19.99, s.AmountUSD)
	assert.Equal(t, "web", s.Channel)
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	// Producers may add fields; older consumers must not break.
	payload := []byte(`{"id":"a1","ts":"2026-08-29T12:00:05Z","store_id":7,"amount_usd":5,"channel":"web","currency":"USD","v":2}`)

	s, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "a1", s.ID)
	assert.Equal(t, 7, s.StoreID)
}

func TestDecodeAcceptsAnyStoreID(t *testing.T) {
	payload := []byte(`{"id":"a1","ts":"2026-08-29T12:00:05Z","store_id":-3,"amount_usd":5,"channel":"kiosk"}`)

	s, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, -3, s.StoreID)
	assert.Equal(t, "kiosk", s.Channel)
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	cases := map[string][]byte{
		"not json":   []byte("garbage"),
		"missing id": []byte(`{"ts":"2026-08-29T12:00:05Z","store_id":1,"amount_usd":5,"channel":"web"}`),
		"missing ts": []byte(`{"id":"a1","store_id":1,"amount_usd":5,"channel":"web"}`),
		"bad ts":     []byte(`{"id":"a1","ts":"yesterday","store_id":1,"amount_usd":5,"channel":"web"}`),
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(payload)
			assert.Error(t, err)
		})
	}
}

func TestEncodeSecondPrecisionUTC(t *testing.T) {
	s := Sale{
		ID:        "e1",
		TS:        time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC),
		StoreID:   100,
		AmountUSD: 10,
		Channel:   "in_store",
	}

	payload, err := s.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"e1","ts":"2026-08-29T09:30:00Z","store_id":100,"amount_usd":10,"channel":"in_store"}`, string(payload))

	// Round-trip through Decode stays identical.
	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
