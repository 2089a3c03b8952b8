package main

import (
	"context"

	"github.com/parcelbridge/rating/internal/config"
	"github.com/parcelbridge/rating/internal/telemetry"
	"github.com/parcelbridge/rating/pkg/carrier"
	"github.com/parcelbridge/rating/pkg/carrier/ups"
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

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *carrier.Registry {
	registry := carrier.NewRegistry()

	if cfg.UPSEnabled {
		client := ups.New(ups.Config{
			ClientID:      cfg.UPSClientID,
			ClientSecret:  cfg.UPSClientSecret,
			BaseURL:       cfg.UPSBaseURL,
			AuthURL:       cfg.UPSAuthURL,
			Version:       cfg.UPSVersion,
			RequestOption: cfg.UPSRequestOption,
			Timeout:       cfg.UPSTimeout(),
			UseMock:       cfg.UPSUseMock,
		}, logger, tracer)
		registry.Register(client)
	}

	return registry
}
