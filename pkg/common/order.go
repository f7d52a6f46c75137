package common

import (
	"time"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

type OrderSide string
type OrderType string
type PriorityTier string
type OrderStatus string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

const (
	PriorityNormal PriorityTier = "normal"
	PriorityFast   PriorityTier = "fast"
	PriorityTurbo  PriorityTier = "turbo"
)

// Order lifecycle. Filled and Failed are terminal; a failed attempt returns
// the caller to Drafted with the request preserved.
const (
	OrderStatusDrafted              OrderStatus = "drafted"
	OrderStatusRiskValidated        OrderStatus = "risk-validated"
	OrderStatusConfirmationRequired OrderStatus = "confirmation-required"
	OrderStatusSubmitted            OrderStatus = "submitted"
	OrderStatusExecuting            OrderStatus = "executing"
	OrderStatusFilled               OrderStatus = "filled"
	OrderStatusFailed               OrderStatus = "failed"
)

// OrderRequest is the immutable input to risk evaluation and execution.
// LimitPrice is only meaningful for limit orders. SlippageTolerancePct and
// Priority come from the caller's settings; HighSlippageAcknowledged must be
// set when the evaluator demands an explicit confirmation.
type OrderRequest struct {
	Pair                     string       `json:"pair"`
	Side                     OrderSide    `json:"side"`
	Type                     OrderType    `json:"type"`
	Amount                   fixed.Point  `json:"amount"`
	LimitPrice               fixed.Point  `json:"limit_price,omitempty"`
	SlippageTolerancePct     fixed.Point  `json:"slippage_tolerance_pct,omitempty"`
	Priority                 PriorityTier `json:"priority,omitempty"`
	HighSlippageAcknowledged bool         `json:"high_slippage_acknowledged,omitempty"`
}

func (r OrderRequest) Fields() []zap.Field {
	return []zap.Field{
		zap.String("pair", r.Pair),
		zap.String("side", string(r.Side)),
		zap.String("type", string(r.Type)),
		zap.String("amount", r.Amount.String()),
		zap.String("limit_price", r.LimitPrice.String()),
	}
}

// Order is a tracked submission with its lifecycle status.
type Order struct {
	ID           string      `json:"id"`
	Pair         string      `json:"pair"`
	Side         OrderSide   `json:"side"`
	Type         OrderType   `json:"type"`
	Amount       fixed.Point `json:"amount"`
	LimitPrice   fixed.Point `json:"limit_price,omitempty"`
	Status       OrderStatus `json:"status"`
	FilledAmount fixed.Point `json:"filled_amount,omitempty"`
	AvgFillPrice fixed.Point `json:"avg_fill_price,omitempty"`
	TxHash       string      `json:"tx_hash,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
