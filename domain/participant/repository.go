package participant

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/akeren/participant-console/internal/models"
	apperrors "github.com/akeren/participant-console/pkg/errors"
	"github.com/akeren/participant-console/pkg/restclient"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=participant

const apiRoot = "participantapi"

type ParticipantRepository interface {
	// ListAll returns every participant the remote API holds.
	ListAll(ctx context.Context) ([]models.Participant, error)
	// FindByID looks up one participant by the id as typed by the user.
	FindByID(ctx context.Context, id string) (*models.Participant, error)
	// Create submits a new participant.
	Create(ctx context.Context, participant *models.Participant) error
	// Update submits changes to an existing participant.
	Update(ctx context.Context, participant *models.Participant) error
	// Delete removes a participant and returns the API's status text.
	Delete(ctx context.Context, id int) (string, error)
}

type participantRepository struct {
	client *restclient.Client
}

func NewParticipantRepository(client *restclient.Client) ParticipantRepository {
	return &participantRepository{client: client}
}

func (pr *participantRepository) ListAll(ctx context.Context) ([]models.Participant, error) {
	resp, err := pr.client.Do(ctx, restclient.Request{
		Operation: "list_all",
		Method:    http.MethodGet,
		Path:      []string{apiRoot, "all"},
	})
	if err != nil {
		return nil, err
	}

	participants := []models.Participant{}
	if resp.IsEmpty() {
		return participants, nil
	}

	if err := resp.DecodeJSON(&participants); err != nil {
		return nil, apperrors.NewUpstreamError("participant list is malformed", err)
	}

	return participants, nil
}

func (pr *participantRepository) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewInvalidRequestError("participant id is required", nil)
	}

	resp, err := pr.client.Do(ctx, restclient.Request{
		Operation: "get_by_id",
		Method:    http.MethodGet,
		Path:      []string{apiRoot, "get", url.PathEscape(id)},
	})
	if err != nil {
		return nil, err
	}

	// The upstream answers 200 with a null body for unknown ids.
	if resp.IsEmpty() {
		return nil, apperrors.NewNotFoundError("participant not found", nil)
	}

	var participant models.Participant
	if err := resp.DecodeJSON(&participant); err != nil {
		return nil, apperrors.NewUpstreamError("participant record is malformed", err)
	}

	return &participant, nil
}

func (pr *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	if participant == nil {
		return apperrors.NewInvalidRequestError("participant cannot be nil", nil)
	}

	_, err := pr.client.Do(ctx, restclient.Request{
		Operation: "create",
		Method:    http.MethodPost,
		Path:      []string{apiRoot, "add"},
		Body:      participant,
	})
	return err
}

func (pr *participantRepository) Update(ctx context.Context, participant *models.Participant) error {
	if participant == nil {
		return apperrors.NewInvalidRequestError("participant cannot be nil", nil)
	}

	_, err := pr.client.Do(ctx, restclient.Request{
		Operation: "update",
		Method:    http.MethodPut,
		Path:      []string{apiRoot, "update"},
		Body:      participant,
	})
	return err
}

func (pr *participantRepository) Delete(ctx context.Context, id int) (string, error) {
	resp, err := pr.client.Do(ctx, restclient.Request{
		Operation: "delete",
		Method:    http.MethodDelete,
		Path:      []string{apiRoot, "delete", strconv.Itoa(id)},
	})
	if err != nil {
		return "", err
	}

	return resp.Text(), nil
}
