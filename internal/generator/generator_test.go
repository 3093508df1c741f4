package generator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
)

func TestSaleValueRanges(t *testing.T) {
	g := New(DefaultConfig(), 1)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := g.Sale()

		require.NotEmpty(t, s.ID)
		assert.False(t, seen[s.ID], "id generated twice: %s", s.ID)
		seen[s.ID] = true

		assert.GreaterOrEqual(t, s.StoreID, 100)
		assert.LessOrEqual(t, s.StoreID, 199)
		assert.GreaterOrEqual(t, s.AmountUSD, 5.0)
		assert.LessOrEqual(t, s.AmountUSD, 250.0)
		assert.Contains(t, sale.Channels, s.Channel)

		// Amounts are whole cents.
		cents := s.AmountUSD * 100
		assert.InDelta(t, math.Round(cents), cents, 1e-9)

		// Timestamps are UTC with second precision.
		assert.Zero(t, s.TS.Nanosecond())
		_, offset := s.TS.Zone()
		assert.Zero(t, offset)
	}
}

func TestSaleCoversAllChannels(t *testing.T) {
	g := New(DefaultConfig(), 42)

	counts := make(map[string]int)
	for i := 0; i < 1000; i++ {
		counts[g.Sale().Channel]++
	}

	for _, ch := range sale.Channels {
		assert.Positive(t, counts[ch], "channel %s never generated", ch)
	}
}
