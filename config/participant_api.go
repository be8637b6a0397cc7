package config

import (
	"fmt"
	"time"

	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/circuitbreaker"
	"github.com/akeren/participant-console/pkg/constants"
	"github.com/akeren/participant-console/pkg/restclient"
	"github.com/akeren/participant-console/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ParticipantAPIURLKey              = "PARTICIPANT_API_URL"
	ParticipantAPITimeoutKey          = "PARTICIPANT_API_TIMEOUT"
	ParticipantAPIBreakerThresholdKey = "PARTICIPANT_API_BREAKER_THRESHOLD"
)

type ParticipantAPIConfig struct {
	BaseURL string
	// Zero leaves the deadline to the caller's context.
	Timeout time.Duration
	// Zero disables the circuit breaker.
	BreakerThreshold int
}

// NewParticipantAPIConfig reads the upstream settings from the environment. Outside
// development PARTICIPANT_API_URL must be set explicitly.
func NewParticipantAPIConfig(appEnv string) (*ParticipantAPIConfig, error) {
	baseURL := utils.GetEnvTrimmed(ParticipantAPIURLKey)
	if baseURL == "" {
		if !IsDevelopmentEnv(appEnv) {
			return nil, fmt.Errorf("%s must be set when %s=%q", ParticipantAPIURLKey, AppEnvKey, appEnv)
		}
		baseURL = constants.DefaultParticipantAPIURL
	}

	return &ParticipantAPIConfig{
		BaseURL:          baseURL,
		Timeout:          utils.GetEnvPositiveDuration(ParticipantAPITimeoutKey, 0),
		BreakerThreshold: utils.GetEnvPositiveInt(ParticipantAPIBreakerThresholdKey, 0),
	}, nil
}

func (pc *ParticipantAPIConfig) ClientConfig(logger *log.Logger, registerer prometheus.Registerer) *restclient.Config {
	cfg := &restclient.Config{
		BaseURL:    pc.BaseURL,
		Timeout:    pc.Timeout,
		Registerer: registerer,
		Logger:     logger,
	}

	if pc.BreakerThreshold > 0 {
		breaker := circuitbreaker.DefaultConfig()
		breaker.FailureThreshold = pc.BreakerThreshold
		cfg.Breaker = breaker
	}

	return cfg
}

func NewParticipantAPIClient(logger *log.Logger, pc *ParticipantAPIConfig, registerer prometheus.Registerer) (*restclient.Client, error) {
	client, err := restclient.New(pc.ClientConfig(logger, registerer))
	if err != nil {
		logger.Error("Invalid participant API configuration", "error", err)
		return nil, err
	}

	logger.Info("Participant API client configured",
		"base_url", client.BaseURL(),
		"timeout", pc.Timeout.String(),
		"breaker_threshold", pc.BreakerThreshold,
	)
	return client, nil
}
