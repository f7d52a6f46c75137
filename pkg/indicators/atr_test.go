package indicators

import (
	"testing"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

func candle(high, low, closing float64) common.Candle {
	return common.Candle{
		High:  fixed.FromFloat64(high),
		Low:   fixed.FromFloat64(low),
		Close: fixed.FromFloat64(closing),
	}
}

func Test_AtrFirstCandle(t *testing.T) {
	atr := NewAtr(14)
	atr.OnCandle(candle(100, 95, 98))

	if atr.Ready() {
		t.Error("Expected ATR to not be ready after first candle")
	}
	if !atr.TrueRange().IsZero() {
		t.Error("Expected true range to be zero after first candle")
	}
}

func Test_AtrTrueRangeSelection(t *testing.T) {
	atr := NewAtr(2)
	atr.OnCandle(candle(100, 95, 98))

	// Gap up: high-lastClose dominates high-low.
	atr.OnCandle(candle(110, 105, 108))
	if !atr.TrueRange().Eq(fixed.FromInt(12, 0)) {
		t.Errorf("True range: got %s, want 12", atr.TrueRange().String())
	}
	if !atr.Ready() {
		t.Error("Expected ATR ready after second candle")
	}
	if !atr.AverageTrueRange().Eq(fixed.FromInt(12, 0)) {
		t.Errorf("First ATR equals first TR, got %s", atr.AverageTrueRange().String())
	}

	// Wilder smoothing: (12*(2-1) + 4) / 2 = 8.
	atr.OnCandle(candle(110, 106, 107))
	if !atr.AverageTrueRange().Eq(fixed.FromInt(8, 0)) {
		t.Errorf("Smoothed ATR: got %s, want 8", atr.AverageTrueRange().String())
	}
}

func Test_AtrReset(t *testing.T) {
	atr := NewAtr(3)
	atr.OnCandle(candle(100, 95, 98))
	atr.OnCandle(candle(102, 97, 100))

	atr.Reset()
	if atr.Ready() {
		t.Error("Expected ATR not ready after reset")
	}
	if !atr.AverageTrueRange().IsZero() {
		t.Error("Expected zero ATR after reset")
	}
}

func Test_SeriesAtr(t *testing.T) {
	candles := []common.Candle{
		candle(100, 95, 98),
		candle(102, 97, 100),
		candle(104, 99, 102),
		candle(103, 100, 101),
	}

	v, ok := SeriesAtr(candles, 3)
	if !ok {
		t.Fatal("Expected ready series ATR")
	}
	if !v.IsPos() {
		t.Errorf("Expected positive ATR, got %s", v.String())
	}

	if _, ok := SeriesAtr(candles[:2], 3); ok {
		t.Error("Expected not ready below window size")
	}
}
