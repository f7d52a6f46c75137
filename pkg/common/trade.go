package common

import (
	"time"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Trade is an executed fill. Append-only; histories holding trades are
// bounded by their owners.
type Trade struct {
	ID        string      `json:"id"`
	Pair      string      `json:"pair"`
	Side      OrderSide   `json:"side"`
	Amount    fixed.Point `json:"amount"`
	Price     fixed.Point `json:"price"`
	FeeUsd    fixed.Point `json:"fee"`
	TxHash    string      `json:"tx_hash"`
	TimeStamp time.Time   `json:"ts"`
}

func (t Trade) Fields() []zap.Field {
	return []zap.Field{
		zap.String("id", t.ID),
		zap.String("pair", t.Pair),
		zap.String("side", string(t.Side)),
		zap.String("amount", t.Amount.String()),
		zap.String("price", t.Price.String()),
		zap.String("tx_hash", t.TxHash),
	}
}
