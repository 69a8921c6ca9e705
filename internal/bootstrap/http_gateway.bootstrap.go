package bootstrap

import (
	"context"
	"net/http"

	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	httpHandler "github.com/krobus00/stocknotifier-service/internal/handler/http"
	"github.com/krobus00/stocknotifier-service/internal/infrastructure"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/krobus00/stocknotifier-service/internal/service/record"
	"github.com/krobus00/stocknotifier-service/internal/service/trading"
	"github.com/krobus00/stocknotifier-service/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func StartHTTPGateway(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConfig := config.Env.Database[constant.StocknotifierDatabase]
	db, err := infrastructure.NewPostgresConnection(ctx, dbConfig)
	util.ContinueOrFatal(err)
	infrastructure.StartPostgresHealthCheck(ctx, db, dbConfig.PingInterval)

	redisClient, requestLock, err := connectRequestLock(ctx)
	util.ContinueOrFatal(err)

	nc, js, err := connectOptionalJetstream()
	util.ContinueOrFatal(err)

	tradingClient, publicClient := newBinanceClients()

	orderRepo := repository.NewOrderRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	migrationRepo := repository.NewMigrationRepository(db)

	orderService := record.NewOrderService(orderRepo, requestLock, js)
	analysisService := record.NewAnalysisService(analysisRepo, requestLock, js)
	migrationService := record.NewMigrationService(migrationRepo)
	tradingService := trading.NewTradingService(tradingClient, publicClient, requestLock, js)

	if js != nil {
		publishers := make([]entity.Publisher, 0)
		publishers = append(publishers, orderService, analysisService, tradingService)
		for _, v := range publishers {
			err = v.JetstreamEventInit(ctx)
			util.ContinueOrFatal(err)
		}
	}

	readinessChecks := map[string]httpHandler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		readinessChecks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	handler := httpHandler.NewHTTPHandler(orderService, analysisService, migrationService, tradingService, readinessChecks)
	httpMux := http.NewServeMux()
	handler.Register(httpMux)

	httpServer := infrastructure.NewHTTPServer(httpMux)
	go func() {
		err := httpServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()

	grpcServer := infrastructure.NewGRPCServer(config.Env.Port[constant.GRPCPort])
	grpcServer.SetServing("", true)
	grpcServer.SetServing(config.ServiceName, true)
	go func() {
		err := grpcServer.Start()
		if err != nil {
			logrus.Error(err)
		}
	}()

	ops := map[string]operation{
		"database": func(ctx context.Context) error {
			cancel()
			return db.Close()
		},
		"http": func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
		"grpc": func(ctx context.Context) error {
			return grpcServer.Shutdown(ctx)
		},
	}
	if redisClient != nil {
		ops["redis"] = func(ctx context.Context) error {
			return redisClient.Close()
		}
	}
	if nc != nil {
		ops["nats connection"] = func(ctx context.Context) error {
			return infrastructure.CloseJetstream(nc)
		}
	}

	wait := gracefulShutdown(ctx, config.Env.GracefulShutdownTimeout, ops)

	<-wait
}
