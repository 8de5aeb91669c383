// Package server реализует gRPC-сервер проверки состояния реестра.
//
// HealthServer периодически опрашивает зависимости и выставляет статус
// стандартного сервиса grpc.health.v1 для балансировщика и оркестратора.
package server

import (
	"context"
	"log/slog"
	"net"
	"sort"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
)

// ServiceName — имя сервиса в протоколе grpc.health.v1.
const ServiceName = "dues-ledger"

// Check проверяет одну зависимость.
type Check func(ctx context.Context) error

// HealthServer — gRPC-сервер со стандартным сервисом health.
type HealthServer struct {
	grpc   *grpc.Server
	health *health.Server
	checks map[string]Check
	log    *slog.Logger
}

// NewHealthServer создаёт сервер. Пока Probe не вызван, статус NOT_SERVING.
func NewHealthServer(logger *slog.Logger, checks map[string]Check) *HealthServer {
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		grpc:   grpcServer,
		health: hs,
		checks: checks,
		log:    logger,
	}
}

// Probe опрашивает зависимости один раз и обновляет статус.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			s.log.Warn("dependency check failed", slog.String("dependency", name), sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Watch вызывает Probe с интервалом interval до отмены ctx.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		s.Probe(probeCtx)
		cancel()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Serve принимает соединения на lis. Блокирует до остановки.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server listening", slog.String("address", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// GracefulStop переводит статус в NOT_SERVING и останавливает сервер.
func (s *HealthServer) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
