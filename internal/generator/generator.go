package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Brazilnut78/streaming-sales-kafka-postgres/internal/domain/sale"
)

type Config struct {
	StoreIDMin int
	StoreIDMax int
	AmountMin  float64
	AmountMax  float64
}

// DefaultConfig: stores 100-199, amounts between $5 and $250.
func DefaultConfig() Config {
	return Config{
		StoreIDMin: 100,
		StoreIDMax: 199,
		AmountMin:  5,
		AmountMax:  250,
	}
}

// Generator synthesizes sale events. It owns its rand source so two
// generators never contend and tests can seed deterministically.
type Generator struct {
	cfg Config
	rng *rand.Rand
	now func() time.Time
}

func New(cfg Config, seed int64) *Generator {
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Sale returns a fully populated event with a fresh unique id.
// Generation cannot fail.
func (g *Generator) Sale() sale.Sale {
	amount := g.cfg.AmountMin + g.rng.Float64()*(g.cfg.AmountMax-g.cfg.AmountMin)
	return sale.Sale{
		ID:        uuid.NewString(),
		TS:        g.now().UTC().Truncate(time.Second),
		StoreID:   g.cfg.StoreIDMin + g.rng.Intn(g.cfg.StoreIDMax-g.cfg.StoreIDMin+1),
		AmountUSD: math.Round(amount*100) / 100,
		Channel:   sale.Channels[g.rng.Intn(len(sale.Channels))],
	}
}
