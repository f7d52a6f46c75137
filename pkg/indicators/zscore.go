package indicators

import (
	"errors"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

type ZScore struct {
	windowSize int
	data       *fixed.RingBuffer
}

func NewZScore(windowSize int) *ZScore {
	return &ZScore{
		windowSize: windowSize,
		data:       fixed.NewRingBuffer(windowSize),
	}
}

func (z *ZScore) AddPoint(p fixed.Point) {
	z.data.Add(p)
}

func (z *ZScore) Value() (fixed.Point, error) {
	if !z.IsReady() {
		return fixed.Point{}, errors.New("not enough data")
	}

	stdDev := z.data.StdDev()
	if stdDev.IsZero() {
		return fixed.Point{}, errors.New("window has no variance")
	}
	return z.data.Latest().Sub(z.data.Mean()).Div(stdDev), nil
}

func (z *ZScore) IsReady() bool {
	return z.data.IsFull()
}

// CloseZScore scores the latest close against the trailing window of closes.
func CloseZScore(candles []common.Candle, window int) (fixed.Point, bool) {
	if len(candles) < window {
		return fixed.Zero, false
	}
	z := NewZScore(window)
	for _, c := range candles[len(candles)-window:] {
		z.AddPoint(c.Close)
	}
	v, err := z.Value()
	if err != nil {
		return fixed.Zero, false
	}
	return v, true
}
