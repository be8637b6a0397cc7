package participant

import (
	"github.com/akeren/participant-console/config/router"
	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/pkg/factory"
	"github.com/akeren/participant-console/pkg/restclient"
)

type ParticipantServiceFactory interface {
	CreateRepository() ParticipantRepository
	CreateService() ParticipantService
	CreateController(service ParticipantService) *router.RESTController
}

type DefaultParticipantServiceFactory struct {
	client *restclient.Client
	logger *log.Logger
	cache  factory.Cache
}

func NewParticipantServiceFactory(client *restclient.Client, logger *log.Logger, cache factory.Cache) ParticipantServiceFactory {
	return &DefaultParticipantServiceFactory{
		client: client,
		logger: logger,
		cache:  cache,
	}
}

func (f *DefaultParticipantServiceFactory) CreateRepository() ParticipantRepository {
	return NewParticipantRepository(f.client)
}

func (f *DefaultParticipantServiceFactory) CreateService() ParticipantService {
	return NewParticipantService(f.logger, f.CreateRepository())
}

func (f *DefaultParticipantServiceFactory) CreateController(service ParticipantService) *router.RESTController {
	return NewParticipantController(service, f.logger, f.cache)
}
