package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/sliceworks/loc-acceptor/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"

	MetricsHost = "0.0.0.0"
	MetricsPort = "7300"
)

// Config carries the listen addresses; empty fields fall back to the
// package defaults.
type Config struct {
	HealthzAddr string
	MetricsAddr string
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer
}

func New() *Service {
	s := &Service{
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
	}
	return s
}

func (s *Service) Start(ctx context.Context, cfg Config) {
	slog.Info("service starting")

	healthzAddr := cfg.HealthzAddr
	if healthzAddr == "" {
		healthzAddr = net.JoinHostPort(HealthzHost, HealthzPort)
	}
	metricsAddr := cfg.MetricsAddr
	if metricsAddr == "" {
		metricsAddr = net.JoinHostPort(MetricsHost, MetricsPort)
	}

	go func() {
		slog.Info("starting healthz server", "addr", healthzAddr)
		if err := s.Healthz.Start(ctx, healthzAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("error starting healthz server", err)
		}
	}()

	go func() {
		slog.Info("starting metrics server", "addr", metricsAddr)
		if err := s.Metrics.Start(ctx, metricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("error starting metrics server", err)
		}
	}()

	slog.Info("service started")
}

func (s *Service) Shutdown() {
	slog.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	slog.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	slog.Info("metrics stopped")

	slog.Info("service stopped")
}
