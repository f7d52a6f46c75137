package common

import "strings"

type TradingPair struct {
	Base   string `json:"base" yaml:"base"`
	Quote  string `json:"quote" yaml:"quote"`
	Symbol string `json:"symbol" yaml:"symbol"` // e.g. "SOL/USDC"
}

// SplitPair breaks a "BASE/QUOTE" symbol into its legs. Unparseable symbols
// fall back to the symbol itself as base and an empty quote.
func SplitPair(symbol string) (base, quote string) {
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) != 2 {
		return symbol, ""
	}
	return parts[0], parts[1]
}
