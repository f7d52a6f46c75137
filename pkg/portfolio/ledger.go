// Package portfolio holds balances, open positions, trade history and
// pending orders. Unrealized PnL is recomputed on every market broadcast for
// the active pair.
package portfolio

import (
	"sync"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

const (
	maxTradeHistory  = 200
	maxRecentTrades  = 50
	maxPendingOrders = 200
	maxRecentPairs   = 10
	maxEquityPoints  = 96
)

type Ledger struct {
	logger *zap.Logger

	mu            sync.Mutex
	balances      []common.Balance
	positions     []common.Position
	tradeHistory  []common.Trade
	recentTrades  []common.Trade
	pendingOrders []common.Order
	recentPairs   []string
	equityCurve   []fixed.Point
}

func NewLedger(logger *zap.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// OnUpdate reprices every open position of the broadcast pair. The mark is
// the tick price when present, otherwise the close of the latest candle.
func (l *Ledger) OnUpdate(u market.Update) {
	var mark fixed.Point
	switch {
	case u.Tick != nil:
		mark = u.Tick.Price
	case len(u.Candles) > 0:
		mark = u.Candles[len(u.Candles)-1].Close
	default:
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.positions {
		if l.positions[i].Pair == u.Pair {
			l.positions[i].Reprice(mark)
		}
	}
}

// UpdateBalance merges a delta into the symbol's balance, creating the
// record when absent.
func (l *Ledger) UpdateBalance(symbol string, deltaAmount, deltaUsd fixed.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.balances {
		if l.balances[i].Symbol == symbol {
			l.balances[i].Amount = l.balances[i].Amount.Add(deltaAmount)
			l.balances[i].UsdValue = l.balances[i].UsdValue.Add(deltaUsd)
			return
		}
	}
	l.balances = append(l.balances, common.Balance{
		Symbol:   symbol,
		Amount:   deltaAmount,
		UsdValue: deltaUsd,
	})
}

func (l *Ledger) SetBalances(balances []common.Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = append([]common.Balance(nil), balances...)
}

func (l *Ledger) Balance(symbol string) (common.Balance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.balances {
		if b.Symbol == symbol {
			return b, true
		}
	}
	return common.Balance{}, false
}

func (l *Ledger) Balances() []common.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]common.Balance(nil), l.balances...)
}

// TotalUsd sums the usd value of all balances.
func (l *Ledger) TotalUsd() fixed.Point {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := fixed.Zero
	for _, b := range l.balances {
		total = total.Add(b.UsdValue)
	}
	return total
}

func (l *Ledger) AddPosition(p common.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.positions = append([]common.Position{p}, l.positions...)
	l.logger.Debug("position opened", p.Fields()...)
}

// RemovePosition closes a position by id; it reports whether the id existed.
func (l *Ledger) RemovePosition(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, p := range l.positions {
		if p.ID == id {
			l.positions = append(l.positions[:i], l.positions[i+1:]...)
			l.logger.Debug("position closed", zap.String("id", id))
			return true
		}
	}
	return false
}

func (l *Ledger) Positions() []common.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]common.Position(nil), l.positions...)
}

// RecordTrade front-inserts the trade into both the bounded recent list and
// the bounded full history.
func (l *Ledger) RecordTrade(t common.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recentTrades = prependTrade(l.recentTrades, t, maxRecentTrades)
	l.tradeHistory = prependTrade(l.tradeHistory, t, maxTradeHistory)
	l.logger.Debug("trade recorded", t.Fields()...)
}

func (l *Ledger) RecentTrades() []common.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]common.Trade(nil), l.recentTrades...)
}

func (l *Ledger) TradeHistory() []common.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]common.Trade(nil), l.tradeHistory...)
}

func (l *Ledger) AddPendingOrder(o common.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pendingOrders = append([]common.Order{o}, l.pendingOrders...)
	if len(l.pendingOrders) > maxPendingOrders {
		l.pendingOrders = l.pendingOrders[:maxPendingOrders]
	}
}

func (l *Ledger) RemovePendingOrder(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, o := range l.pendingOrders {
		if o.ID == id {
			l.pendingOrders = append(l.pendingOrders[:i], l.pendingOrders[i+1:]...)
			return
		}
	}
}

// UpdatePendingOrder applies fn to the order with the given id.
func (l *Ledger) UpdatePendingOrder(id string, fn func(*common.Order)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.pendingOrders {
		if l.pendingOrders[i].ID == id {
			fn(&l.pendingOrders[i])
			return
		}
	}
}

func (l *Ledger) PendingOrders() []common.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]common.Order(nil), l.pendingOrders...)
}

// TouchPair moves pair to the front of the most-recently-used list.
func (l *Ledger) TouchPair(pair string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.recentPairs)+1)
	out = append(out, pair)
	for _, p := range l.recentPairs {
		if p != pair {
			out = append(out, p)
		}
	}
	if len(out) > maxRecentPairs {
		out = out[:maxRecentPairs]
	}
	l.recentPairs = out
}

func (l *Ledger) RecentPairs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.recentPairs...)
}

// AppendEquityPoint keeps a bounded tail of the account's equity curve.
func (l *Ledger) AppendEquityPoint(v fixed.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.equityCurve = append(l.equityCurve, v)
	if len(l.equityCurve) > maxEquityPoints {
		l.equityCurve = l.equityCurve[len(l.equityCurve)-maxEquityPoints:]
	}
}

func (l *Ledger) EquityCurve() []fixed.Point {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]fixed.Point(nil), l.equityCurve...)
}

// Reset drops all portfolio state.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = nil
	l.positions = nil
	l.tradeHistory = nil
	l.recentTrades = nil
	l.pendingOrders = nil
	l.equityCurve = nil
}

func prependTrade(list []common.Trade, t common.Trade, capacity int) []common.Trade {
	list = append([]common.Trade{t}, list...)
	if len(list) > capacity {
		list = list[:capacity]
	}
	return list
}
