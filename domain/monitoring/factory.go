package monitoring

import (
	"github.com/akeren/participant-console/config/router"
	"github.com/akeren/participant-console/internal/log"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	upstream Upstream
	logger   *log.Logger
	cache    Cache
}

func NewMonitoringControllerFactory(upstream Upstream, logger *log.Logger, cache Cache) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		upstream: upstream,
		logger:   logger,
		cache:    cache,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.upstream, f.logger, f.cache)
}
