package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "terminald",
	Short: "A simulated Solana DEX market and execution engine",
	Long: `Terminald runs a fully synthetic trading venue: price and candle
generation per pair and timeframe, a derived order-book ladder, pre-trade
risk checks and simulated execution with a daily loss ledger.

No real funds, keys or RPC endpoints are involved at any point.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, optional)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose console logging")
}
