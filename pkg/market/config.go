package market

import (
	"time"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Config carries the static tables and tuning knobs of the simulator. All
// values have working defaults; zero fields are filled by Normalize.
type Config struct {
	DefaultPair      string
	DefaultTimeframe common.Timeframe

	// Anchors maps pair symbol to the base price the synthetic walk is
	// pulled towards. Pairs missing from the table use FallbackAnchor.
	Anchors        map[string]fixed.Point
	FallbackAnchor fixed.Point

	// TimeframeSeconds maps timeframe to candle bucket width.
	TimeframeSeconds map[common.Timeframe]int64

	SeedCount int // candles generated on pair/timeframe switch
	Capacity  int // series length before oldest eviction

	// Tick timer fires after TickIntervalFloor plus a random share of
	// TickIntervalJitter, re-randomized every fire.
	TickIntervalFloor  time.Duration
	TickIntervalJitter time.Duration

	SeedVolatility    float64 // per-step volatility of the seed walk
	SeedMeanReversion float64 // pull-back strength towards the anchor
	TickVolatility    float64 // symmetric per-tick delta
}

func DefaultConfig() Config {
	return Config{
		DefaultPair:      "SOL/USDC",
		DefaultTimeframe: common.Timeframe1m,
		Anchors:          DefaultAnchors(),
		FallbackAnchor:   fixed.Hundred,
		TimeframeSeconds: DefaultTimeframeSeconds(),

		SeedCount: 100,
		Capacity:  500,

		TickIntervalFloor:  800 * time.Millisecond,
		TickIntervalJitter: 700 * time.Millisecond,

		SeedVolatility:    0.0015,
		SeedMeanReversion: 0.02,
		TickVolatility:    0.0003,
	}
}

// Normalize fills zero-valued fields from DefaultConfig so partially built
// configs (e.g. from yaml) stay usable.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.DefaultPair == "" {
		c.DefaultPair = def.DefaultPair
	}
	if c.DefaultTimeframe == "" {
		c.DefaultTimeframe = def.DefaultTimeframe
	}
	if len(c.Anchors) == 0 {
		c.Anchors = def.Anchors
	}
	if c.FallbackAnchor.IsZero() {
		c.FallbackAnchor = def.FallbackAnchor
	}
	if len(c.TimeframeSeconds) == 0 {
		c.TimeframeSeconds = def.TimeframeSeconds
	}
	if c.SeedCount == 0 {
		c.SeedCount = def.SeedCount
	}
	if c.Capacity == 0 {
		c.Capacity = def.Capacity
	}
	if c.TickIntervalFloor == 0 {
		c.TickIntervalFloor = def.TickIntervalFloor
	}
	if c.TickIntervalJitter == 0 {
		c.TickIntervalJitter = def.TickIntervalJitter
	}
	if c.SeedVolatility == 0 {
		c.SeedVolatility = def.SeedVolatility
	}
	if c.SeedMeanReversion == 0 {
		c.SeedMeanReversion = def.SeedMeanReversion
	}
	if c.TickVolatility == 0 {
		c.TickVolatility = def.TickVolatility
	}
	return c
}

// DefaultAnchors is the built-in pair to base-price table.
func DefaultAnchors() map[string]fixed.Point {
	return map[string]fixed.Point{
		"SOL/USDC":    fixed.MustFromString("178.5"),
		"BONK/SOL":    fixed.MustFromString("0.000025"),
		"WIF/USDC":    fixed.MustFromString("2.85"),
		"JUP/SOL":     fixed.MustFromString("0.085"),
		"JTO/USDC":    fixed.MustFromString("2.1"),
		"RAY/USDC":    fixed.MustFromString("1.2"),
		"PYTH/USDC":   fixed.MustFromString("0.35"),
		"ORCA/SOL":    fixed.MustFromString("0.012"),
		"mSOL/SOL":    fixed.MustFromString("1.02"),
		"BONK/USDC":   fixed.MustFromString("0.0000045"),
		"WIF/SOL":     fixed.MustFromString("0.016"),
		"JUP/USDC":    fixed.MustFromString("15.2"),
		"RENDER/USDC": fixed.MustFromString("7.5"),
		"HNT/USDC":    fixed.MustFromString("4.2"),
		"MNDE/SOL":    fixed.MustFromString("0.028"),
	}
}

func DefaultTimeframeSeconds() map[common.Timeframe]int64 {
	return map[common.Timeframe]int64{
		common.Timeframe1m:  60,
		common.Timeframe5m:  300,
		common.Timeframe15m: 900,
		common.Timeframe1H:  3600,
		common.Timeframe4H:  14400,
		common.Timeframe1D:  86400,
		common.Timeframe1W:  604800,
	}
}

// Anchor resolves the base price for a pair.
func (c Config) Anchor(pair string) fixed.Point {
	if p, ok := c.Anchors[pair]; ok {
		return p
	}
	return c.FallbackAnchor
}

// Interval resolves the bucket width of tf, falling back to one minute.
func (c Config) Interval(tf common.Timeframe) int64 {
	if s, ok := c.TimeframeSeconds[tf]; ok {
		return s
	}
	return 60
}
