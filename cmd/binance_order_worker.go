/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/stocknotifier-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// binanceOrderWorkerCmd represents the binance order worker command
var binanceOrderWorkerCmd = &cobra.Command{
	Use:   "binance-order-worker",
	Short: "Place queued orders on Binance",
	Long:  `The binance order worker consumes queued order requests from NATS JetStream and places them on Binance, retrying while the exchange is unreachable.`,
	Run:   bootstrap.StartBinanceOrderWorker,
}

func init() {
	rootCmd.AddCommand(binanceOrderWorkerCmd)
}
