package dashboard

import (
	"time"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
)

// Summary is the headline totals row.
type Summary struct {
	TotalSales    int64      `json:"total_sales"`
	TotalRevenue  float64    `json:"total_revenue"`
	AvgSale       float64    `json:"avg_sale"`
	LatestSale    *time.Time `json:"latest_sale"`
	TotalStores   int64      `json:"total_stores"`
	TotalChannels int64      `json:"total_channels"`
}

type ChannelStat struct {
	Channel string  `json:"channel"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type StoreStat struct {
	StoreID int     `json:"store_id"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type TrendBucket struct {
	Hour    time.Time `json:"hour"`
	Count   int64     `json:"count"`
	Revenue float64   `json:"revenue"`
}

// Snapshot is one full refresh of the read side. A nil section means its
// query failed (or no refresh has happened yet) and the presentation layer
// renders it as "no data" instead of failing the whole page.
type Snapshot struct {
	RefreshedAt time.Time     `json:"refreshed_at"`
	Summary     *Summary      `json:"summary"`
	Channels    []ChannelStat `json:"channels"`
	TopStores   []StoreStat   `json:"top_stores"`
	Trend       []TrendBucket `json:"trend"`
	Recent      []sale.Sale   `json:"recent"`
}
