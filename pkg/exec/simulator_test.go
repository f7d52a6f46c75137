package exec

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/book"
	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/portfolio"
	"github.com/solterminal/solterminal/pkg/risk"
	"github.com/solterminal/solterminal/pkg/utility/clock"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

type testEngine struct {
	sim    *Simulator
	manual *clock.Manual
	ledger *portfolio.Ledger
}

func createTestEngine(t *testing.T, cfg Config, riskCfg risk.Config, seed int64) *testEngine {
	t.Helper()
	logger := zap.NewNop()
	manual := clock.NewManual(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	mkt := market.NewSimulator(logger, market.DefaultConfig(),
		market.WithClock(manual), market.WithRand(rand.New(rand.NewSource(seed))))
	books := book.NewSynthesizer(logger, book.DefaultConfig(),
		book.WithClock(manual), book.WithRand(rand.New(rand.NewSource(seed))))
	ledger := portfolio.NewLedger(logger)
	ledger.SetBalances([]common.Balance{
		{Symbol: "SOL", Amount: fixed.FromInt(1000, 0), UsdValue: fixed.FromInt(178500, 0)},
		{Symbol: "USDC", Amount: fixed.FromInt(100000, 0), UsdValue: fixed.FromInt(100000, 0)},
	})

	// Keep tick timers running so quotes stay fresh across clock advances.
	unsubscribe := mkt.Subscribe(func(market.Update) {})
	t.Cleanup(unsubscribe)

	sim := NewSimulator(logger, cfg, riskCfg, mkt, books, ledger,
		WithClock(manual), WithRand(rand.New(rand.NewSource(seed))))
	return &testEngine{sim: sim, manual: manual, ledger: ledger}
}

func marketBuy(amount int) common.OrderRequest {
	return common.OrderRequest{
		Pair:   "SOL/USDC",
		Side:   common.OrderSideBuy,
		Type:   common.OrderTypeMarket,
		Amount: fixed.FromInt(amount, 0),
	}
}

func Test_SubmitRejectionReturnsValidationError(t *testing.T) {
	e := createTestEngine(t, DefaultConfig(), risk.DefaultConfig(), 42)

	results, err := e.sim.Submit(marketBuy(100)) // notional far above the max
	require.Error(t, err)
	assert.Nil(t, results)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.NotEmpty(t, vErr.Violations)
	assert.Contains(t, vErr.Error(), "MAX_NOTIONAL")

	// A rejection touches nothing.
	assert.Empty(t, e.ledger.PendingOrders())
	assert.Empty(t, e.ledger.Positions())
	assert.True(t, e.sim.RiskLedger().UsedUsd.IsZero())
}

func Test_SubmitSuccessfulFill(t *testing.T) {
	// A negative failure rate isolates the success path.
	cfg := DefaultConfig()
	cfg.FailureRate = -1
	e := createTestEngine(t, cfg, risk.DefaultConfig(), 42)

	request := marketBuy(1)
	decision := e.sim.Evaluate(request)
	require.True(t, decision.Accepted)
	fillPrice := decision.Assessment.EffectivePrice

	results, err := e.sim.Submit(request)
	require.NoError(t, err)

	pending := e.ledger.PendingOrders()
	require.Len(t, pending, 1)
	assert.Equal(t, common.OrderStatusSubmitted, pending[0].Status)

	e.manual.Advance(2 * time.Second)

	var result Result
	select {
	case result = <-results:
	default:
		t.Fatal("result not delivered after the delay window")
	}

	require.True(t, result.Success)
	assert.NotEmpty(t, result.TxHash)
	require.NotNil(t, result.Trade)
	require.NotNil(t, result.Position)

	assert.True(t, result.Trade.Price.Eq(fillPrice), "fill price pinned at submission")
	assert.Equal(t, result.TxHash, result.Trade.TxHash)

	// Exactly one trade and one position, and the pending order is gone.
	assert.Len(t, e.ledger.RecentTrades(), 1)
	require.Len(t, e.ledger.Positions(), 1)
	assert.Empty(t, e.ledger.PendingOrders())

	position := e.ledger.Positions()[0]
	assert.True(t, position.EntryPrice.Eq(fillPrice))
	assert.True(t, position.Size.Eq(request.Amount))

	// The daily ledger is debited by the validation-time loss budget.
	used := e.sim.RiskLedger().UsedUsd
	assert.True(t, used.Eq(decision.Assessment.EstimatedLossBudgetUsd),
		"ledger debit %s, want %s", used.String(), decision.Assessment.EstimatedLossBudgetUsd.String())
}

func Test_SubmissionLifecyclePath(t *testing.T) {
	assert.Equal(t, []common.OrderStatus{
		common.OrderStatusRiskValidated,
		common.OrderStatusSubmitted,
	}, submissionPath(risk.Assessment{}))

	assert.Equal(t, []common.OrderStatus{
		common.OrderStatusRiskValidated,
		common.OrderStatusConfirmationRequired,
		common.OrderStatusSubmitted,
	}, submissionPath(risk.Assessment{HighSlippage: true}))
}

func Test_SubmitAcknowledgedHighSlippage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = -1
	e := createTestEngine(t, cfg, risk.DefaultConfig(), 42)

	request := marketBuy(1)
	request.SlippageTolerancePct = fixed.FromInt(15, 1) // 1.5%, above the warn threshold
	request.HighSlippageAcknowledged = true

	decision := e.sim.Evaluate(request)
	require.True(t, decision.Accepted)
	require.True(t, decision.Assessment.HighSlippage)

	results, err := e.sim.Submit(request)
	require.NoError(t, err)

	// The confirmation step is walked synchronously; the parked order has
	// already reached Submitted.
	pending := e.ledger.PendingOrders()
	require.Len(t, pending, 1)
	assert.Equal(t, common.OrderStatusSubmitted, pending[0].Status)

	e.manual.Advance(2 * time.Second)
	result := <-results
	assert.True(t, result.Success)
}

func Test_SubmitLimitOrderPinsLimitPrice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = -1
	e := createTestEngine(t, cfg, risk.DefaultConfig(), 42)

	request := common.OrderRequest{
		Pair:       "SOL/USDC",
		Side:       common.OrderSideBuy,
		Type:       common.OrderTypeLimit,
		Amount:     fixed.FromInt(1, 0),
		LimitPrice: fixed.FromInt(170, 0),
	}

	results, err := e.sim.Submit(request)
	require.NoError(t, err)

	e.manual.Advance(2 * time.Second)
	result := <-results
	require.True(t, result.Success)
	assert.True(t, result.Trade.Price.Eq(fixed.FromInt(170, 0)))
}

func Test_SubmitFailureLeavesStateUntouched(t *testing.T) {
	// A failure rate above 1 forces every submission to fail.
	cfg := DefaultConfig()
	cfg.FailureRate = 2
	e := createTestEngine(t, cfg, risk.DefaultConfig(), 42)

	results, err := e.sim.Submit(marketBuy(1))
	require.NoError(t, err)

	e.manual.Advance(2 * time.Second)
	result := <-results

	require.False(t, result.Success)
	assert.Equal(t, "transaction failed: slippage exceeded", result.Error)
	assert.Empty(t, result.TxHash)
	assert.Nil(t, result.Trade)
	assert.Nil(t, result.Position)

	assert.Empty(t, e.ledger.RecentTrades())
	assert.Empty(t, e.ledger.Positions())
	assert.Empty(t, e.ledger.PendingOrders())
	assert.True(t, e.sim.RiskLedger().UsedUsd.IsZero(), "failed attempts never debit the ledger")
}

func Test_FailureRateDistribution(t *testing.T) {
	riskCfg := risk.DefaultConfig()
	riskCfg.DailyCapUsd = fixed.FromInt(1000000, 0)

	e := createTestEngine(t, DefaultConfig(), riskCfg, 7)

	const trials = 2000
	failures := 0
	for i := 0; i < trials; i++ {
		results, err := e.sim.Submit(marketBuy(1))
		require.NoError(t, err)
		e.manual.Advance(2 * time.Second)
		if result := <-results; !result.Success {
			failures++
		}
	}

	rate := float64(failures) / float64(trials)
	assert.Greater(t, rate, 0.03, "failure rate far below the configured 5%%")
	assert.Less(t, rate, 0.07, "failure rate far above the configured 5%%")
}

func Test_EvaluateDoesNotMutate(t *testing.T) {
	e := createTestEngine(t, DefaultConfig(), risk.DefaultConfig(), 42)

	for i := 0; i < 10; i++ {
		d := e.sim.Evaluate(marketBuy(1))
		require.True(t, d.Accepted)
	}

	assert.True(t, e.sim.RiskLedger().UsedUsd.IsZero())
	assert.Empty(t, e.ledger.PendingOrders())
	assert.Empty(t, e.ledger.RecentTrades())
}
