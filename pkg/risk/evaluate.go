// Package risk gates simulated order execution. Evaluate is pure: it never
// mutates balances, positions or the ledger, and a rejection always happens
// before any simulated network call.
package risk

import (
	"fmt"
	"time"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

type ViolationCode string

const (
	CodeStaleQuote             ViolationCode = "STALE_QUOTE"
	CodeMaxNotional            ViolationCode = "MAX_NOTIONAL"
	CodeDailyLossCap           ViolationCode = "DAILY_LOSS_CAP"
	CodeInsufficientBalance    ViolationCode = "INSUFFICIENT_BALANCE"
	CodeSlippageUnacknowledged ViolationCode = "SLIPPAGE_UNACKNOWLEDGED"
)

type Violation struct {
	Code ViolationCode `json:"code"`
	Msg  string        `json:"msg"`
}

// MarketState is the evaluator's view of the market at validation time.
// Book may be nil when no snapshot has been generated yet.
type MarketState struct {
	LastPrice   fixed.Point
	LastQuoteAt time.Time
	Book        *common.OrderBookSnapshot
}

// AccountState carries the balances of the request's pair legs.
type AccountState struct {
	BaseBalance  fixed.Point
	QuoteBalance fixed.Point
}

// Assessment is the cost model derived during evaluation. The execution
// simulator debits EstimatedLossBudgetUsd on a fill, so the value is carried
// through rather than recomputed.
type Assessment struct {
	EffectivePrice         fixed.Point `json:"effective_price"`
	NotionalUsd            fixed.Point `json:"notional_usd"`
	PriceImpactPct         fixed.Point `json:"price_impact_pct"`
	EstSlippagePct         fixed.Point `json:"est_slippage_pct"`
	TotalFeeUsd            fixed.Point `json:"total_fee_usd"`
	EstimatedLossBudgetUsd fixed.Point `json:"estimated_loss_budget_usd"`
	RequiredQuoteUsd       fixed.Point `json:"required_quote_usd"`
	HighSlippage           bool        `json:"high_slippage"`
}

type Decision struct {
	Accepted   bool        `json:"accepted"`
	Violations []Violation `json:"violations,omitempty"`
	Assessment Assessment  `json:"assessment"`
}

func (d *Decision) add(code ViolationCode, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Accepted = false
}

// Evaluate checks request against the current market, account and daily risk
// ledger. All violations are collected in priority order, never
// short-circuited. The stored ledger day is normalized to now's calendar day
// for the comparison without being mutated.
func Evaluate(request common.OrderRequest, market MarketState, account AccountState, ledger common.RiskLedger, cfg Config, now time.Time) Decision {
	d := Decision{Accepted: true}
	d.Assessment = assess(request, market, cfg)
	a := d.Assessment

	if now.Sub(market.LastQuoteAt) > cfg.StaleAfter {
		d.add(CodeStaleQuote, "market quote is stale, wait for a fresh tick")
	}

	if a.NotionalUsd.Gt(cfg.MaxOrderUsd) {
		d.add(CodeMaxNotional,
			fmt.Sprintf("order notional $%s exceeds max $%s", a.NotionalUsd.String(), cfg.MaxOrderUsd.String()))
	}

	used := ledger.UsedFor(common.DayKey(now))
	if used.Add(a.EstimatedLossBudgetUsd).Gt(cfg.DailyCapUsd) {
		remaining := fixed.Max(fixed.Zero, cfg.DailyCapUsd.Sub(used))
		d.add(CodeDailyLossCap,
			fmt.Sprintf("daily loss cap reached, risk budget remaining $%s", remaining.String()))
	}

	switch request.Side {
	case common.OrderSideBuy:
		if account.QuoteBalance.Lt(a.RequiredQuoteUsd) {
			d.add(CodeInsufficientBalance,
				fmt.Sprintf("need %s quote, have %s", a.RequiredQuoteUsd.String(), account.QuoteBalance.String()))
		}
	case common.OrderSideSell:
		if account.BaseBalance.Lt(request.Amount) {
			d.add(CodeInsufficientBalance,
				fmt.Sprintf("need %s base, have %s", request.Amount.String(), account.BaseBalance.String()))
		}
	}

	if a.HighSlippage && !request.HighSlippageAcknowledged {
		d.add(CodeSlippageUnacknowledged, "high slippage requires explicit acknowledgment")
	}

	return d
}

func assess(request common.OrderRequest, market MarketState, cfg Config) Assessment {
	var a Assessment

	a.EffectivePrice = market.LastPrice
	if request.Type == common.OrderTypeLimit && !request.LimitPrice.IsZero() {
		a.EffectivePrice = request.LimitPrice
	}
	a.NotionalUsd = request.Amount.Mul(a.EffectivePrice)

	spreadPct := fixed.Zero
	if market.Book != nil {
		spreadPct = fixed.Max(fixed.Zero, market.Book.SpreadPercent)
	}

	depth := topOfBookDepthUsd(request.Side, market.Book, cfg.DepthLevels)
	liquidity := depth
	if !depth.IsPos() {
		liquidity = fixed.Max(a.NotionalUsd.MulInt(2), cfg.FloorLiquidityUsd)
	}

	if request.Type == common.OrderTypeMarket {
		impact := a.NotionalUsd.Div(fixed.Max(liquidity, fixed.One)).Mul(fixed.Hundred).Mul(cfg.ImpactFactor)
		a.PriceImpactPct = fixed.Min(cfg.ImpactCapPct, impact)
		a.EstSlippagePct = fixed.Max(spreadPct.DivInt(2), a.PriceImpactPct.Mul(fixed.MustFromString("0.7")))
	}

	exchangeFee := a.NotionalUsd.Mul(cfg.ExchangeFeePct).Div(fixed.Hundred)
	a.TotalFeeUsd = exchangeFee.Add(cfg.NetworkFeeUsd(request.Priority))
	a.EstimatedLossBudgetUsd = a.NotionalUsd.Mul(a.EstSlippagePct).Div(fixed.Hundred).Add(a.TotalFeeUsd)
	a.RequiredQuoteUsd = a.NotionalUsd.Add(a.TotalFeeUsd)
	a.HighSlippage = fixed.Max(request.SlippageTolerancePct, a.EstSlippagePct).Gte(cfg.WarnThresholdPct)

	return a
}

// topOfBookDepthUsd sums price*size over the first levels of the side the
// order would consume: asks for a buy, bids for a sell.
func topOfBookDepthUsd(side common.OrderSide, book *common.OrderBookSnapshot, levels int) fixed.Point {
	if book == nil {
		return fixed.Zero
	}
	ladder := book.Asks
	if side == common.OrderSideSell {
		ladder = book.Bids
	}
	if levels < len(ladder) {
		ladder = ladder[:levels]
	}
	depth := fixed.Zero
	for _, lvl := range ladder {
		depth = depth.Add(lvl.Price.Mul(lvl.Size))
	}
	return depth
}
