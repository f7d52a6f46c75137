package common

import (
	"time"

	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Candle is one OHLCV bucket. The most recent candle of a series is mutated
// in place by ticks until a rollover seals it; older candles are immutable.
type Candle struct {
	Time   int64       `json:"time"` // bucket open, unix seconds
	Open   fixed.Point `json:"open"`
	High   fixed.Point `json:"high"`
	Low    fixed.Point `json:"low"`
	Close  fixed.Point `json:"close"`
	Volume fixed.Point `json:"volume"`
}

// Tick is a sub-candle price update.
type Tick struct {
	Price     fixed.Point `json:"price"`
	TimeStamp time.Time   `json:"ts"`
}

type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe1H  Timeframe = "1H"
	Timeframe4H  Timeframe = "4H"
	Timeframe1D  Timeframe = "1D"
	Timeframe1W  Timeframe = "1W"
)
