package common

import (
	"time"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Position is opened by a successful fill and repriced on every market tick
// for its pair. Each fill opens a fresh position; there is no netting against
// an existing same-pair position.
type Position struct {
	ID                   string      `json:"id"`
	Pair                 string      `json:"pair"`
	Side                 OrderSide   `json:"side"`
	Size                 fixed.Point `json:"size"`
	EntryPrice           fixed.Point `json:"entry_price"`
	CurrentPrice         fixed.Point `json:"current_price"`
	UnrealizedPnl        fixed.Point `json:"unrealized_pnl"`
	UnrealizedPnlPercent fixed.Point `json:"unrealized_pnl_percent"`
	CreatedAt            time.Time   `json:"created_at"`
}

// Reprice recomputes the mark-dependent fields against price. Pnl percent is
// zero when the entry price is zero.
func (p *Position) Reprice(price fixed.Point) {
	p.CurrentPrice = price
	p.UnrealizedPnl = p.Size.Mul(price.Sub(p.EntryPrice))
	if p.EntryPrice.IsZero() {
		p.UnrealizedPnlPercent = fixed.Zero
		return
	}
	p.UnrealizedPnlPercent = price.Sub(p.EntryPrice).Div(p.EntryPrice).Mul(fixed.Hundred)
}

func (p Position) Fields() []zap.Field {
	return []zap.Field{
		zap.String("id", p.ID),
		zap.String("pair", p.Pair),
		zap.String("side", string(p.Side)),
		zap.String("size", p.Size.String()),
		zap.String("entry_price", p.EntryPrice.String()),
		zap.String("unrealized_pnl", p.UnrealizedPnl.String()),
	}
}
