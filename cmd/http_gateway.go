/*
Copyright © 2026 Michael Putera Wardana <michaelputeraw@gmail.com>
*/
package cmd

import (
	"github.com/krobus00/stocknotifier-service/internal/bootstrap"
	"github.com/spf13/cobra"
)

// httpGatewayCmd represents the http gateway command
var httpGatewayCmd = &cobra.Command{
	Use:   "http-gateway",
	Short: "Start the HTTP gateway",
	Long: `The HTTP gateway stores orders and indicator analysis records and relays
signed and public requests to the Binance spot REST API. A grpc health service
runs alongside it.`,
	Run: bootstrap.StartHTTPGateway,
}

func init() {
	rootCmd.AddCommand(httpGatewayCmd)
}
