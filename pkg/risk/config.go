package risk

import (
	"time"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Config holds the pre-trade risk limits and cost-model constants.
type Config struct {
	MaxOrderUsd      fixed.Point
	DailyCapUsd      fixed.Point
	WarnThresholdPct fixed.Point
	StaleAfter       time.Duration

	ExchangeFeePct    fixed.Point // percent of notional
	NetworkFeeNormal  fixed.Point // flat usd by priority tier
	NetworkFeeFast    fixed.Point
	NetworkFeeTurbo   fixed.Point
	ImpactFactor      fixed.Point
	ImpactCapPct      fixed.Point
	FloorLiquidityUsd fixed.Point
	DepthLevels       int // book levels counted as top-of-book depth
}

func DefaultConfig() Config {
	return Config{
		MaxOrderUsd:      fixed.FromInt(5000, 0),
		DailyCapUsd:      fixed.FromInt(300, 0),
		WarnThresholdPct: fixed.One,
		StaleAfter:       10 * time.Second,

		ExchangeFeePct:    fixed.MustFromString("0.22"),
		NetworkFeeNormal:  fixed.MustFromString("0.02"),
		NetworkFeeFast:    fixed.MustFromString("0.05"),
		NetworkFeeTurbo:   fixed.MustFromString("0.09"),
		ImpactFactor:      fixed.MustFromString("0.35"),
		ImpactCapPct:      fixed.MustFromString("4.5"),
		FloorLiquidityUsd: fixed.FromInt(50000, 0),
		DepthLevels:       5,
	}
}

// NetworkFeeUsd resolves the flat network fee for a priority tier. Unknown
// tiers charge the normal rate.
func (c Config) NetworkFeeUsd(tier common.PriorityTier) fixed.Point {
	switch tier {
	case common.PriorityTurbo:
		return c.NetworkFeeTurbo
	case common.PriorityFast:
		return c.NetworkFeeFast
	default:
		return c.NetworkFeeNormal
	}
}
