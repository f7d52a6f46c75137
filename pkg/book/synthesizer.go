// Package book derives a synthetic bid/ask depth ladder from the simulator's
// mid-price. Snapshots are regenerated wholesale and throttled independently
// of the tick rate.
package book

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/utility/clock"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

type Config struct {
	Levels      int           // levels per side
	SpacingPct  float64       // per-level spacing as a fraction of mid
	MinInterval time.Duration // regeneration floor
	SizeBase    float64       // minimum level size
	SizeJitter  float64       // random size on top of the base
}

func DefaultConfig() Config {
	return Config{
		Levels:      15,
		SpacingPct:  0.0002,
		MinInterval: 220 * time.Millisecond,
		SizeBase:    100,
		SizeJitter:  1000,
	}
}

type Option func(*Synthesizer)

func WithClock(clk clock.Clock) Option {
	return func(b *Synthesizer) { b.clk = clk }
}

func WithRand(rng *rand.Rand) Option {
	return func(b *Synthesizer) { b.rng = rng }
}

type Synthesizer struct {
	logger *zap.Logger
	cfg    Config
	clk    clock.Clock
	rng    *rand.Rand

	mu       sync.Mutex
	lastGen  time.Time
	snapshot common.OrderBookSnapshot
	hasSnap  bool
}

func NewSynthesizer(logger *zap.Logger, cfg Config, options ...Option) *Synthesizer {
	b := &Synthesizer{
		logger: logger,
		cfg:    cfg,
		clk:    clock.System(),
	}
	for _, option := range options {
		option(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.cfg.Levels == 0 {
		b.cfg = DefaultConfig()
	}
	return b
}

// OnUpdate adapts a market broadcast into a refresh. The mid-price is the
// close of the most recent candle.
func (b *Synthesizer) OnUpdate(u market.Update) {
	if len(u.Candles) == 0 {
		return
	}
	b.Refresh(u.Candles[len(u.Candles)-1].Close)
}

// Refresh regenerates the ladder around mid unless the previous generation
// is younger than the configured floor. It reports whether a regeneration
// happened; either way the current snapshot is returned.
func (b *Synthesizer) Refresh(mid fixed.Point) (common.OrderBookSnapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clk.Now()
	if b.hasSnap && now.Sub(b.lastGen) < b.cfg.MinInterval {
		return b.snapshot, false
	}
	b.lastGen = now

	step := mid.Mul(fixed.FromFloat64(b.cfg.SpacingPct))
	bids := b.generateSideLocked(mid, step.Neg())
	asks := b.generateSideLocked(mid, step)

	spread := fixed.Zero
	spreadPct := fixed.Zero
	if len(bids) > 0 && len(asks) > 0 {
		spread = asks[0].Price.Sub(bids[0].Price)
		if !mid.IsZero() {
			spreadPct = spread.Div(mid).Mul(fixed.Hundred)
		}
	}

	b.snapshot = common.OrderBookSnapshot{
		Bids:          bids,
		Asks:          asks,
		Spread:        spread,
		SpreadPercent: spreadPct,
	}
	b.hasSnap = true
	return b.snapshot, true
}

// Snapshot returns the last generated book, ok=false before the first
// refresh.
func (b *Synthesizer) Snapshot() (common.OrderBookSnapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot, b.hasSnap
}

// generateSideLocked builds one side best-first: step is negative for bids,
// positive for asks. Totals accumulate outward from the touch.
func (b *Synthesizer) generateSideLocked(mid, step fixed.Point) []common.OrderBookLevel {
	levels := make([]common.OrderBookLevel, 0, b.cfg.Levels)
	total := fixed.Zero
	for i := 1; i <= b.cfg.Levels; i++ {
		size := fixed.FromFloat64(b.rng.Float64()*b.cfg.SizeJitter + b.cfg.SizeBase).Rescale(2)
		total = total.Add(size)
		levels = append(levels, common.OrderBookLevel{
			Price: mid.Add(step.MulInt(i)),
			Size:  size,
			Total: total,
		})
	}
	return levels
}
