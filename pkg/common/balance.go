package common

import "github.com/solterminal/solterminal/pkg/utility/fixed"

// Balance is one funded asset. Mutated only by execution side effects or
// external funding.
type Balance struct {
	Symbol   string      `json:"symbol"`
	Amount   fixed.Point `json:"amount"`
	UsdValue fixed.Point `json:"usd_value"`
}
