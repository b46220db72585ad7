package main

import (
	"context"

	"github.com/parcelgrid/rateshop/internal/config"
	"github.com/parcelgrid/rateshop/internal/telemetry"
	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/parcelgrid/rateshop/pkg/carrier/mock"
	"github.com/parcelgrid/rateshop/pkg/carrier/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) (*carrier.Registry, error) {
	registry := carrier.NewRegistry()

	if cfg.UPSEnabled {
		var provider carrier.Provider
		if cfg.UPSUseMock {
			provider = mock.New("ups")
		} else {
			provider = ups.New(ups.Config{
				ClientID:      cfg.UPSClientID,
				ClientSecret:  cfg.UPSClientSecret,
				AccountNumber: cfg.UPSAccountNumber,
				BaseURL:       cfg.UPSBaseURL,
				APIVersion:    cfg.UPSAPIVersion,
				Timeout:       cfg.UPSTimeout,
			}, logger, tracer)
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
