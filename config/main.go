package config

import (
	"context"
	"time"

	"github.com/akeren/participant-console/config/router"
	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/constants"
	"github.com/akeren/participant-console/pkg/restclient"
	"github.com/akeren/participant-console/pkg/utils"
)

type ApplicationConfig struct {
	RouterService   *router.RouterService
	ParticipantAPI  *restclient.Client
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	ParticipantAPI    *ParticipantAPIConfig
}

func NewAppConfig() (*AppConfig, error) {
	participantAPI, err := NewParticipantAPIConfig(GetAppEnv())
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		RateLimitRequests: utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   utils.GetEnvPositiveDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvPositiveDuration("REQUEST_TIMEOUT", 30*time.Second),
		ParticipantAPI:    participantAPI,
	}, nil
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		_ = CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	appConfig, err := NewAppConfig()
	if err != nil {
		return nil, err
	}

	tracingShutdown, err := SetupTracing(logger, appConfig)
	if err != nil {
		return nil, err
	}

	cache := NewCacheConfig().NewCacheOrNil(logger)

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	// Upstream call metrics share the router's /metrics registry.
	participantAPI, err := NewParticipantAPIClient(logger, appConfig.ParticipantAPI, routerService.MetricsRegistry())
	if err != nil {
		routerService.Cleanup()
		_ = CloseCache(cache, logger)
		return nil, err
	}

	logger.Info("Application configuration loaded successfully")

	return &ApplicationConfig{
		RouterService:   routerService,
		ParticipantAPI:  participantAPI,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
