package monitoring

import (
	"context"
	"time"

	"github.com/akeren/participant-console/config/router"
	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/internal/models"
	"github.com/akeren/participant-console/pkg/ratelimit"
)

const probeTimeout = 3 * time.Second

type Cache interface {
	Ping(ctx context.Context) error
}

// Upstream is the participant API as seen by the health probe.
type Upstream interface {
	ListAll(ctx context.Context) ([]models.Participant, error)
}

type HealthStatus struct {
	Upstream int `json:"upstream"` // 1 = reachable, 0 = unreachable
	Cache    int `json:"cache"`    // 1 = healthy, 0 = unhealthy/not configured
	Uptime   int `json:"uptime"`   // uptime in seconds
}

type MonitoringController struct {
	upstream  Upstream
	logger    *log.Logger
	cache     Cache
	startTime time.Time
}

func NewMonitoringController(upstream Upstream, logger *log.Logger, cache Cache) *router.RESTController {
	ctrl := &MonitoringController{
		upstream:  upstream,
		logger:    logger,
		cache:     cache,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {

			controller.RateLimitWith(routerService, createMonitoringRateLimiter())

			routerService.AddGetHandler(controller, nil, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, nil, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func createMonitoringRateLimiter() ratelimit.RateLimiter {
	const monitoringRequestsPerMinute = 10

	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: monitoringRequestsPerMinute,
		Window:   time.Minute,
	})
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	healthStatus := ctrl.performHealthChecks(ctx, logger)

	return &router.ServiceResult{
		StatusCode: 200,
		Data:       healthStatus,
		Message:    "participant-console health check completed",
	}
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return &router.ServiceResult{
		StatusCode: 200,
		Data:       "Monitoring endpoint is operational.",
		Message:    "Monitoring successful",
	}
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	checkUpstreamReachability(ctx, ctrl, &status, logger)

	checkCacheConnectivity(ctx, ctrl, &status, logger)

	return status
}

func checkCacheConnectivity(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.cache == nil {
		logger.Info("Cache not configured, cache health check skipped")
		return
	}

	if err := ctrl.cache.Ping(ctx); err != nil {
		logger.Error("Cache health check failed", "error", err)
		return
	}

	status.Cache = 1
	logger.Info("Cache health check passed")
}

func checkUpstreamReachability(ctx context.Context, ctrl *MonitoringController, status *HealthStatus, logger *log.Logger) {
	if ctrl.upstream == nil {
		logger.Info("Participant API not configured, upstream health check skipped")
		return
	}

	if _, err := ctrl.upstream.ListAll(ctx); err != nil {
		logger.Error("Participant API health check failed", "error", err)
		return
	}

	status.Upstream = 1
	logger.Info("Participant API health check passed")
}
