package bootstrap

import (
	"context"
	"errors"

	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/krobus00/stocknotifier-service/internal/infrastructure"
	"github.com/krobus00/stocknotifier-service/internal/service/trading"
	"github.com/krobus00/stocknotifier-service/internal/util"
	"github.com/spf13/cobra"
)

func StartBinanceOrderWorker(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, js, err := infrastructure.NewJetstream(config.Env.NatsJetstream)
	util.ContinueOrFatal(err)

	tradingClient, publicClient := newBinanceClients()
	if tradingClient == nil {
		util.ContinueOrFatal(errors.New("binance order worker requires api credentials"))
	}

	tradingService := trading.NewTradingService(tradingClient, publicClient, nil, js)

	subscribers := make([]entity.Subscriber, 0)
	subscribers = append(subscribers, tradingService)
	for _, v := range subscribers {
		err = v.JetstreamEventSubscribe(ctx)
		util.ContinueOrFatal(err)
	}

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, map[string]operation{
		"nats connection": func(ctx context.Context) error {
			cancel()
			return infrastructure.CloseJetstream(nc)
		},
	})

	<-wait
}
