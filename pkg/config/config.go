// Package config loads the engine configuration from yaml. Every field is
// optional; missing values fall back to the built-in defaults, so an empty
// file yields a fully working demo engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solterminal/solterminal/pkg/book"
	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/exec"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/risk"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

type Config struct {
	Market    MarketConfig    `yaml:"market"`
	Book      BookConfig      `yaml:"book"`
	Risk      RiskConfig      `yaml:"risk"`
	Execution ExecutionConfig `yaml:"execution"`
	Feed      FeedConfig      `yaml:"feed"`
	Account   AccountConfig   `yaml:"account"`
}

type MarketConfig struct {
	DefaultPair      string            `yaml:"default_pair"`
	DefaultTimeframe string            `yaml:"default_timeframe"`
	Anchors          map[string]string `yaml:"anchors"` // pair -> base price
	SeedCount        int               `yaml:"seed_count"`
	Capacity         int               `yaml:"capacity"`
	TickFloorMs      int               `yaml:"tick_floor_ms"`
	TickJitterMs     int               `yaml:"tick_jitter_ms"`
}

type BookConfig struct {
	Levels        int     `yaml:"levels"`
	SpacingPct    float64 `yaml:"spacing_pct"`
	MinIntervalMs int     `yaml:"min_interval_ms"`
}

type RiskConfig struct {
	MaxOrderUsd      float64 `yaml:"max_order_usd"`
	DailyCapUsd      float64 `yaml:"daily_cap_usd"`
	WarnThresholdPct float64 `yaml:"warn_threshold_pct"`
	StaleAfterMs     int     `yaml:"stale_after_ms"`
}

type ExecutionConfig struct {
	DelayFloorMs  int     `yaml:"delay_floor_ms"`
	DelayJitterMs int     `yaml:"delay_jitter_ms"`
	FailureRate   float64 `yaml:"failure_rate"`
}

type FeedConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type BalanceConfig struct {
	Symbol   string  `yaml:"symbol"`
	Amount   float64 `yaml:"amount"`
	UsdValue float64 `yaml:"usd_value"`
}

type AccountConfig struct {
	Balances []BalanceConfig `yaml:"balances"`
}

// Load reads path when non-empty; an empty path returns the zero Config,
// which resolves to defaults everywhere.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// MarketConfig resolves the simulator configuration.
func (c Config) MarketConfig() (market.Config, error) {
	mc := market.Config{
		DefaultPair:      c.Market.DefaultPair,
		DefaultTimeframe: common.Timeframe(c.Market.DefaultTimeframe),
		SeedCount:        c.Market.SeedCount,
		Capacity:         c.Market.Capacity,
	}
	if len(c.Market.Anchors) > 0 {
		mc.Anchors = make(map[string]fixed.Point, len(c.Market.Anchors))
		for pair, price := range c.Market.Anchors {
			p, err := fixed.FromString(price)
			if err != nil {
				return market.Config{}, fmt.Errorf("anchor %s: %w", pair, err)
			}
			mc.Anchors[pair] = p
		}
	}
	if c.Market.TickFloorMs > 0 {
		mc.TickIntervalFloor = time.Duration(c.Market.TickFloorMs) * time.Millisecond
	}
	if c.Market.TickJitterMs > 0 {
		mc.TickIntervalJitter = time.Duration(c.Market.TickJitterMs) * time.Millisecond
	}
	return mc.Normalize(), nil
}

// BookConfig resolves the order-book synthesizer configuration.
func (c Config) BookConfig() book.Config {
	bc := book.DefaultConfig()
	if c.Book.Levels > 0 {
		bc.Levels = c.Book.Levels
	}
	if c.Book.SpacingPct > 0 {
		bc.SpacingPct = c.Book.SpacingPct
	}
	if c.Book.MinIntervalMs > 0 {
		bc.MinInterval = time.Duration(c.Book.MinIntervalMs) * time.Millisecond
	}
	return bc
}

// RiskConfig resolves the evaluator limits.
func (c Config) RiskConfig() risk.Config {
	rc := risk.DefaultConfig()
	if c.Risk.MaxOrderUsd > 0 {
		rc.MaxOrderUsd = fixed.FromFloat64(c.Risk.MaxOrderUsd)
	}
	if c.Risk.DailyCapUsd > 0 {
		rc.DailyCapUsd = fixed.FromFloat64(c.Risk.DailyCapUsd)
	}
	if c.Risk.WarnThresholdPct > 0 {
		rc.WarnThresholdPct = fixed.FromFloat64(c.Risk.WarnThresholdPct)
	}
	if c.Risk.StaleAfterMs > 0 {
		rc.StaleAfter = time.Duration(c.Risk.StaleAfterMs) * time.Millisecond
	}
	return rc
}

// ExecutionConfig resolves the execution simulator tuning.
func (c Config) ExecutionConfig() exec.Config {
	ec := exec.DefaultConfig()
	if c.Execution.DelayFloorMs > 0 {
		ec.DelayFloor = time.Duration(c.Execution.DelayFloorMs) * time.Millisecond
	}
	if c.Execution.DelayJitterMs > 0 {
		ec.DelayJitter = time.Duration(c.Execution.DelayJitterMs) * time.Millisecond
	}
	if c.Execution.FailureRate > 0 {
		ec.FailureRate = c.Execution.FailureRate
	}
	return ec
}

// ListenAddr resolves the feed server address.
func (c Config) ListenAddr() string {
	if c.Feed.ListenAddr != "" {
		return c.Feed.ListenAddr
	}
	return "127.0.0.1:8787"
}

// Balances resolves the initial demo account funding.
func (c Config) Balances() []common.Balance {
	if len(c.Account.Balances) == 0 {
		return []common.Balance{
			{Symbol: "SOL", Amount: fixed.FromInt(25, 0), UsdValue: fixed.MustFromString("4462.5")},
			{Symbol: "USDC", Amount: fixed.FromInt(5000, 0), UsdValue: fixed.FromInt(5000, 0)},
		}
	}
	out := make([]common.Balance, 0, len(c.Account.Balances))
	for _, b := range c.Account.Balances {
		out = append(out, common.Balance{
			Symbol:   b.Symbol,
			Amount:   fixed.FromFloat64(b.Amount),
			UsdValue: fixed.FromFloat64(b.UsdValue),
		})
	}
	return out
}
