package domain

import (
	"context"
	"time"

	"github.com/akeren/participant-console/config"
	"github.com/akeren/participant-console/domain/monitoring"
	"github.com/akeren/participant-console/domain/participant"
	"github.com/akeren/participant-console/internal/log"
)

// InitialRefreshTimeout bounds the startup load so a stalled upstream cannot
// hold the console in a loading state.
const InitialRefreshTimeout = 10 * time.Second

// SetupCoreDomain mounts the monitoring and console controllers. It does not
// touch the upstream; call PrimeParticipants to load the list.
func SetupCoreDomain(appConfig *config.ApplicationConfig) participant.ParticipantService {
	var cache monitoring.Cache
	if appConfig.Cache != nil {
		cache = appConfig.Cache
	}

	participants := participant.NewParticipantServiceFactory(appConfig.ParticipantAPI, appConfig.Logger, cache)
	service := participants.CreateService()

	appConfig.RouterService.MountController(
		monitoring.NewMonitoringControllerFactory(participants.CreateRepository(), appConfig.Logger, cache).CreateController(),
	)
	appConfig.RouterService.MountController(participants.CreateController(service))

	return service
}

// PrimeParticipants runs the first refresh under timeout. A failure leaves the
// console with an empty list and the fetch banner set.
func PrimeParticipants(ctx context.Context, service participant.ParticipantService, logger *log.Logger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := service.Refresh(ctx); err != nil {
		logger.Warn("Initial participant refresh failed", "error", err, "timeout", timeout)
		return err
	}

	return nil
}
