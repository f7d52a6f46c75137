package book

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/utility/clock"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

func createTestSynthesizer(t *testing.T) (*Synthesizer, *clock.Manual) {
	t.Helper()
	manual := clock.NewManual(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	b := NewSynthesizer(zap.NewNop(), DefaultConfig(),
		WithClock(manual), WithRand(rand.New(rand.NewSource(42))))
	return b, manual
}

func Test_LadderShape(t *testing.T) {
	b, _ := createTestSynthesizer(t)
	mid := fixed.MustFromString("178.5")

	snap, regenerated := b.Refresh(mid)
	require.True(t, regenerated)
	require.Len(t, snap.Bids, 15)
	require.Len(t, snap.Asks, 15)

	assert.True(t, snap.Bids[0].Price.Lt(mid), "best bid below mid")
	assert.True(t, snap.Asks[0].Price.Gt(mid), "best ask above mid")

	for i := 1; i < len(snap.Bids); i++ {
		assert.True(t, snap.Bids[i].Price.Lt(snap.Bids[i-1].Price), "bids must descend")
		assert.True(t, snap.Bids[i].Total.Gt(snap.Bids[i-1].Total), "bid totals must accumulate")
	}
	for i := 1; i < len(snap.Asks); i++ {
		assert.True(t, snap.Asks[i].Price.Gt(snap.Asks[i-1].Price), "asks must ascend")
		assert.True(t, snap.Asks[i].Total.Gt(snap.Asks[i-1].Total), "ask totals must accumulate")
	}

	best, ok := snap.BestBid()
	require.True(t, ok)
	assert.True(t, best.Price.Eq(snap.Bids[0].Price))
}

func Test_SpreadIsPositive(t *testing.T) {
	b, _ := createTestSynthesizer(t)
	mid := fixed.MustFromString("178.5")

	snap, _ := b.Refresh(mid)
	assert.True(t, snap.Spread.IsPos())
	assert.True(t, snap.SpreadPercent.IsPos())
	assert.True(t, snap.Spread.Eq(snap.Asks[0].Price.Sub(snap.Bids[0].Price)))
}

func Test_RefreshThrottle(t *testing.T) {
	b, manual := createTestSynthesizer(t)
	mid := fixed.MustFromString("100")

	first, regenerated := b.Refresh(mid)
	require.True(t, regenerated)

	// Within the floor the previous snapshot is served unchanged.
	second, regenerated := b.Refresh(fixed.MustFromString("101"))
	assert.False(t, regenerated)
	assert.True(t, second.Bids[0].Price.Eq(first.Bids[0].Price))

	manual.Advance(250 * time.Millisecond)
	third, regenerated := b.Refresh(fixed.MustFromString("101"))
	assert.True(t, regenerated)
	assert.False(t, third.Bids[0].Price.Eq(first.Bids[0].Price))
}

func Test_SnapshotBeforeFirstRefresh(t *testing.T) {
	b, _ := createTestSynthesizer(t)

	_, ok := b.Snapshot()
	assert.False(t, ok)

	b.Refresh(fixed.MustFromString("2.85"))
	snap, ok := b.Snapshot()
	require.True(t, ok)
	assert.Len(t, snap.Bids, 15)
}

func Test_OnUpdateUsesLatestClose(t *testing.T) {
	b, _ := createTestSynthesizer(t)

	mid := fixed.MustFromString("15.2")
	b.OnUpdate(market.Update{
		Pair: "JUP/USDC",
		Candles: []common.Candle{
			{Close: fixed.MustFromString("15.0")},
			{Close: mid},
		},
	})

	snap, ok := b.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.Bids[0].Price.Lt(mid))
	assert.True(t, snap.Asks[0].Price.Gt(mid))

	// Empty update carries no mid, nothing regenerates.
	before, _ := b.Snapshot()
	b.OnUpdate(market.Update{Pair: "JUP/USDC"})
	after, _ := b.Snapshot()
	assert.True(t, after.Bids[0].Price.Eq(before.Bids[0].Price))
}
