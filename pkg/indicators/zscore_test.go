package indicators

import (
	"testing"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

func Test_ZScoreNotReady(t *testing.T) {
	z := NewZScore(5)
	z.AddPoint(fixed.FromInt(1, 0))

	if z.IsReady() {
		t.Error("Expected not ready before the window fills")
	}
	if _, err := z.Value(); err == nil {
		t.Error("Expected error before the window fills")
	}
}

func Test_ZScoreValue(t *testing.T) {
	z := NewZScore(4)
	for _, v := range []int{10, 10, 10, 14} {
		z.AddPoint(fixed.FromInt(v, 0))
	}

	// mean=11, population stddev=sqrt(3); latest=14 scores positive.
	v, err := z.Value()
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsPos() {
		t.Errorf("Expected positive z-score, got %s", v.String())
	}
}

func Test_ZScoreFlatWindow(t *testing.T) {
	z := NewZScore(3)
	for i := 0; i < 3; i++ {
		z.AddPoint(fixed.FromInt(7, 0))
	}

	if _, err := z.Value(); err == nil {
		t.Error("Expected error on a window with no variance")
	}
}

func Test_CloseZScore(t *testing.T) {
	candles := []common.Candle{
		{Close: fixed.FromInt(100, 0)},
		{Close: fixed.FromInt(101, 0)},
		{Close: fixed.FromInt(99, 0)},
		{Close: fixed.FromInt(105, 0)},
	}

	v, ok := CloseZScore(candles, 4)
	if !ok {
		t.Fatal("Expected ready close z-score")
	}
	if !v.IsPos() {
		t.Errorf("Outlier close should score positive, got %s", v.String())
	}

	if _, ok := CloseZScore(candles[:2], 4); ok {
		t.Error("Expected not ready below window size")
	}
}
