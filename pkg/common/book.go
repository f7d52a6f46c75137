package common

import "github.com/solterminal/solterminal/pkg/utility/fixed"

type OrderBookLevel struct {
	Price fixed.Point `json:"price"`
	Size  fixed.Point `json:"size"`
	Total fixed.Point `json:"total"` // running cumulative size for the side
}

// OrderBookSnapshot is regenerated wholesale on each refresh; levels are
// never patched incrementally. Bids descend by price, asks ascend.
type OrderBookSnapshot struct {
	Bids          []OrderBookLevel `json:"bids"`
	Asks          []OrderBookLevel `json:"asks"`
	Spread        fixed.Point      `json:"spread"`
	SpreadPercent fixed.Point      `json:"spread_percent"`
}

// BestBid returns the highest bid, ok=false on an empty side.
func (s OrderBookSnapshot) BestBid() (OrderBookLevel, bool) {
	if len(s.Bids) == 0 {
		return OrderBookLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the lowest ask, ok=false on an empty side.
func (s OrderBookSnapshot) BestAsk() (OrderBookLevel, bool) {
	if len(s.Asks) == 0 {
		return OrderBookLevel{}, false
	}
	return s.Asks[0], true
}
