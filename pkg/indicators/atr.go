// Package indicators derives chart overlays from the synthetic candle series.
package indicators

import (
	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Atr smooths the true range over a window using Wilder's method.
type Atr struct {
	windowSize int

	lastClose  fixed.Point
	lastAtr    fixed.Point
	currentAtr fixed.Point
	currentTr  fixed.Point
}

func NewAtr(windowSize int) *Atr {
	return &Atr{windowSize: windowSize}
}

func (a *Atr) OnCandle(c common.Candle) {
	defer func() {
		a.lastClose = c.Close
	}()

	if a.lastClose.IsZero() {
		return
	}

	tr := c.High.Sub(c.Low).Abs()
	if hc := c.High.Sub(a.lastClose).Abs(); hc.Gt(tr) {
		tr = hc
	}
	if lc := c.Low.Sub(a.lastClose).Abs(); lc.Gt(tr) {
		tr = lc
	}
	a.currentTr = tr

	if a.lastAtr.IsZero() {
		a.currentAtr = a.currentTr
	} else {
		a.currentAtr = a.lastAtr.MulInt(a.windowSize - 1).Add(a.currentTr).DivInt(a.windowSize)
	}
	a.lastAtr = a.currentAtr
}

func (a *Atr) AverageTrueRange() fixed.Point {
	return a.currentAtr
}

func (a *Atr) TrueRange() fixed.Point {
	return a.currentTr
}

func (a *Atr) Ready() bool {
	return !a.lastAtr.IsZero()
}

func (a *Atr) Reset() {
	a.lastClose = fixed.Zero
	a.lastAtr = fixed.Zero
	a.currentAtr = fixed.Zero
	a.currentTr = fixed.Zero
}

// SeriesAtr streams a full candle snapshot through a fresh Atr. ok is false
// until at least window+1 candles exist.
func SeriesAtr(candles []common.Candle, window int) (fixed.Point, bool) {
	if len(candles) <= window {
		return fixed.Zero, false
	}
	atr := NewAtr(window)
	for _, c := range candles {
		atr.OnCandle(c)
	}
	return atr.AverageTrueRange(), atr.Ready()
}
