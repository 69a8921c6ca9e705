package infrastructure

import (
	"context"
	"errors"
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultGRPCAddr = ":9090"

// GRPCServer exposes the standard grpc health service so orchestrators can
// health-check the gateway over grpc.
type GRPCServer struct {
	addr   string
	server *grpc.Server
	health *health.Server
}

func NewGRPCServer(port string) *GRPCServer {
	addr := listenAddr(port, defaultGRPCAddr)

	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &GRPCServer{
		addr:   addr,
		server: server,
		health: healthServer,
	}
}

// SetServing flips the health status reported for service. An empty service
// name is the overall server status.
func (g *GRPCServer) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus(service, status)
}

func (g *GRPCServer) Start() error {
	listener, err := net.Listen("tcp", g.addr)
	if err != nil {
		return err
	}

	logrus.WithField("addr", g.addr).Info("grpc server starting")
	err = g.server.Serve(listener)
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}

func (g *GRPCServer) Shutdown(ctx context.Context) error {
	g.health.Shutdown()

	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()
		return ctx.Err()
	}
}
