// Package exec simulates asynchronous order submission: randomized latency,
// randomized failure, and on success the Trade/Position/ledger side effects.
// No real settlement, signing or RPC happens anywhere below this line.
package exec

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/book"
	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/portfolio"
	"github.com/solterminal/solterminal/pkg/risk"
	"github.com/solterminal/solterminal/pkg/utility"
	"github.com/solterminal/solterminal/pkg/utility/clock"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// ValidationError carries the risk violations of a rejected request. It is
// surfaced before any simulated network call and guarantees no state was
// touched; the caller's draft stays intact for correction and retry.
type ValidationError struct {
	Violations []risk.Violation
}

func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = string(v.Code)
	}
	return fmt.Sprintf("order rejected: %s", strings.Join(codes, ", "))
}

// Result resolves a submission. A failed attempt is terminal for the attempt
// only; the request may be resubmitted as-is.
type Result struct {
	Success  bool             `json:"success"`
	TxHash   string           `json:"tx_hash,omitempty"`
	Trade    *common.Trade    `json:"trade,omitempty"`
	Position *common.Position `json:"position,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type Config struct {
	DelayFloor  time.Duration
	DelayJitter time.Duration
	FailureRate float64
}

func DefaultConfig() Config {
	return Config{
		DelayFloor:  1000 * time.Millisecond,
		DelayJitter: 1000 * time.Millisecond,
		FailureRate: 0.05,
	}
}

type Option func(*Simulator)

func WithClock(clk clock.Clock) Option {
	return func(s *Simulator) { s.clk = clk }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// Simulator owns the daily risk ledger: it is the only writer, debiting on
// confirmed fills, and the evaluator reads it through each submission.
type Simulator struct {
	logger  *zap.Logger
	cfg     Config
	riskCfg risk.Config
	clk     clock.Clock

	mkt    *market.Simulator
	books  *book.Synthesizer
	ledger *portfolio.Ledger

	mu         sync.Mutex
	rng        *rand.Rand
	riskLedger common.RiskLedger
}

func NewSimulator(logger *zap.Logger, cfg Config, riskCfg risk.Config, mkt *market.Simulator, books *book.Synthesizer, ledger *portfolio.Ledger, options ...Option) *Simulator {
	s := &Simulator{
		logger:  logger,
		cfg:     cfg,
		riskCfg: riskCfg,
		clk:     clock.System(),
		mkt:     mkt,
		books:   books,
		ledger:  ledger,
	}
	for _, option := range options {
		option(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Evaluate runs the pre-trade checks against the latest market, account and
// ledger state without submitting anything.
func (s *Simulator) Evaluate(request common.OrderRequest) risk.Decision {
	now := s.clk.Now()
	return risk.Evaluate(request, s.marketState(), s.accountState(request.Pair), s.RiskLedger(), s.riskCfg, now)
}

// Submit validates the request and, when accepted, schedules an asynchronous
// resolution after a randomized delay. The returned channel receives exactly
// one Result. A rejection returns a *ValidationError and a nil channel.
//
// Callers must keep at most one submission in flight per surface; the
// simulator does not serialize concurrent submissions.
func (s *Simulator) Submit(request common.OrderRequest) (<-chan Result, error) {
	decision := s.Evaluate(request)
	if !decision.Accepted {
		s.logger.Info("order rejected",
			append(request.Fields(), zap.Int("violations", len(decision.Violations)))...)
		return nil, &ValidationError{Violations: decision.Violations}
	}

	now := s.clk.Now()

	// Fill price is pinned at call time, not at resolution.
	fillPrice := s.mkt.CurrentPrice()
	if request.Type == common.OrderTypeLimit && !request.LimitPrice.IsZero() {
		fillPrice = request.LimitPrice
	}

	order := common.Order{
		ID:         utility.NewOrderID(),
		Pair:       request.Pair,
		Side:       request.Side,
		Type:       request.Type,
		Amount:     request.Amount,
		LimitPrice: request.LimitPrice,
		Status:     common.OrderStatusDrafted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, status := range submissionPath(decision.Assessment) {
		order.Status = status
		s.logger.Debug("order state",
			zap.String("order_id", order.ID), zap.String("status", string(status)))
	}
	s.ledger.AddPendingOrder(order)
	s.logger.Info("order submitted", append(request.Fields(), zap.String("order_id", order.ID))...)

	results := make(chan Result, 1)
	delay := s.nextDelay()
	s.clk.AfterFunc(delay, func() {
		results <- s.resolve(order, request, fillPrice, decision.Assessment.EstimatedLossBudgetUsd, decision.Assessment.TotalFeeUsd)
	})
	return results, nil
}

// submissionPath lists the lifecycle states a validated request walks through
// before it is parked as pending. The confirmation step appears only when the
// assessment flagged high slippage; the evaluator has already enforced the
// acknowledgment by the time the path is walked.
func submissionPath(a risk.Assessment) []common.OrderStatus {
	path := []common.OrderStatus{common.OrderStatusRiskValidated}
	if a.HighSlippage {
		path = append(path, common.OrderStatusConfirmationRequired)
	}
	return append(path, common.OrderStatusSubmitted)
}

func (s *Simulator) resolve(order common.Order, request common.OrderRequest, fillPrice, lossBudgetUsd, feeUsd fixed.Point) Result {
	now := s.clk.Now()
	s.ledger.UpdatePendingOrder(order.ID, func(o *common.Order) {
		o.Status = common.OrderStatusExecuting
		o.UpdatedAt = now
	})

	if s.roll() < s.cfg.FailureRate {
		s.ledger.UpdatePendingOrder(order.ID, func(o *common.Order) {
			o.Status = common.OrderStatusFailed
			o.UpdatedAt = now
		})
		s.ledger.RemovePendingOrder(order.ID)
		s.logger.Info("order failed", zap.String("order_id", order.ID))
		return Result{Success: false, Error: "transaction failed: slippage exceeded"}
	}

	txHash := utility.NewTxHash()

	trade := common.Trade{
		ID:        utility.NewTradeID(),
		Pair:      request.Pair,
		Side:      request.Side,
		Amount:    request.Amount,
		Price:     fillPrice,
		FeeUsd:    feeUsd,
		TxHash:    txHash,
		TimeStamp: now,
	}
	position := common.Position{
		ID:           utility.NewPositionID(),
		Pair:         request.Pair,
		Side:         request.Side,
		Size:         request.Amount,
		EntryPrice:   fillPrice,
		CurrentPrice: fillPrice,
		CreatedAt:    now,
	}

	s.ledger.RecordTrade(trade)
	s.ledger.AddPosition(position)

	s.mu.Lock()
	s.riskLedger.Debit(common.DayKey(now), lossBudgetUsd)
	s.mu.Unlock()

	s.ledger.UpdatePendingOrder(order.ID, func(o *common.Order) {
		o.Status = common.OrderStatusFilled
		o.FilledAmount = request.Amount
		o.AvgFillPrice = fillPrice
		o.TxHash = txHash
		o.UpdatedAt = now
	})
	s.ledger.RemovePendingOrder(order.ID)

	s.logger.Info("order filled",
		zap.String("order_id", order.ID),
		zap.String("tx_hash", txHash),
		zap.String("fill_price", fillPrice.String()))

	return Result{Success: true, TxHash: txHash, Trade: &trade, Position: &position}
}

// RiskLedger returns a copy of the daily risk ledger.
func (s *Simulator) RiskLedger() common.RiskLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.riskLedger
}

func (s *Simulator) marketState() risk.MarketState {
	state := risk.MarketState{
		LastPrice:   s.mkt.CurrentPrice(),
		LastQuoteAt: s.mkt.LastQuoteAt(),
	}
	if snap, ok := s.books.Snapshot(); ok {
		state.Book = &snap
	}
	return state
}

func (s *Simulator) accountState(pair string) risk.AccountState {
	base, quote := common.SplitPair(pair)
	var state risk.AccountState
	if b, ok := s.ledger.Balance(base); ok {
		state.BaseBalance = b.Amount
	}
	if q, ok := s.ledger.Balance(quote); ok {
		state.QuoteBalance = q.Amount
	}
	return state
}

func (s *Simulator) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	jitter := time.Duration(0)
	if s.cfg.DelayJitter > 0 {
		jitter = time.Duration(s.rng.Int63n(int64(s.cfg.DelayJitter)))
	}
	return s.cfg.DelayFloor + jitter
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
