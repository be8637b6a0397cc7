package participant

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/internal/models"
	apperrors "github.com/akeren/participant-console/pkg/errors"
)

// ParticipantService owns the console state: the cached participant list, the
// form draft and its mode, the lookup result and the banner. Every mutation goes
// through one of these methods.
type ParticipantService interface {
	// Refresh replaces the cached list with the API's. The cache is kept on failure.
	Refresh(ctx context.Context) error

	// SetField changes one draft field by its JSON name.
	SetField(field, value string) error

	// SetDraft replaces the whole draft without changing the mode.
	SetDraft(draft Draft)

	// Submit validates the draft and creates or updates the participant depending on the mode.
	Submit(ctx context.Context) error

	// Cancel drops the draft and returns to create mode.
	Cancel()

	// Load puts a participant into the form for editing.
	Load(participant models.Participant)

	// Edit loads the cached participant with the given id.
	Edit(id int) error

	// FetchByID fills the lookup panel. A blank id does nothing.
	FetchByID(ctx context.Context, id string) error

	// Delete removes a participant and refreshes the list.
	Delete(ctx context.Context, id int) error

	// Snapshot returns a copy of the current state.
	Snapshot() Snapshot
}

type participantService struct {
	logger     *log.Logger
	repository ParticipantRepository
	validator  *DraftValidator

	mu           sync.Mutex
	participants []models.Participant
	draft        Draft
	mode         Mode
	lookup       *models.Participant
	banner       Banner
}

func NewParticipantService(logger *log.Logger, repository ParticipantRepository) ParticipantService {
	return &participantService{
		logger:       logger,
		repository:   repository,
		validator:    NewDraftValidator(),
		participants: []models.Participant{},
		mode:         ModeCreate,
	}
}

func (s *participantService) Refresh(ctx context.Context) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	participants, err := s.repository.ListAll(ctx)
	if err != nil {
		logger.Error("Failed to fetch participants", "error", err)
		s.setBanner(MsgFetchAllFailed, BannerError)
		return err
	}

	if participants == nil {
		participants = []models.Participant{}
	}

	s.mu.Lock()
	s.participants = participants
	s.mu.Unlock()

	return nil
}

func (s *participantService) SetField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.draft.Set(field, value); err != nil {
		return apperrors.NewInvalidRequestError("unknown field "+field, err)
	}
	return nil
}

func (s *participantService) SetDraft(draft Draft) {
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()
}

func (s *participantService) Submit(ctx context.Context) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	s.mu.Lock()
	draft, mode := s.draft, s.mode
	s.mu.Unlock()

	record, err := s.validator.Validate(draft)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			logger.Info("Draft rejected", "field", validationErr.Field, "mode", mode)
			s.setBanner(validationErr.Message, BannerError)
			return apperrors.NewInvalidRequestError(validationErr.Message, validationErr)
		}
		logger.Error("Draft validation failed unexpectedly", "error", err)
		return apperrors.NewInternalServerError("unable to validate participant", err)
	}

	successMsg, failureMsg := MsgAdded, MsgAddFailed
	if mode == ModeEdit {
		successMsg, failureMsg = MsgUpdated, MsgUpdateFailed
		err = s.repository.Update(ctx, record)
	} else {
		err = s.repository.Create(ctx, record)
	}

	if err != nil {
		logger.Error("Failed to submit participant", "mode", mode, "id", record.ID, "error", err)
		s.setBanner(failureMsg, BannerError)
		return err
	}

	s.mu.Lock()
	s.banner = Banner{Text: successMsg, Level: BannerSuccess}
	s.resetFormLocked()
	s.mu.Unlock()

	_ = s.Refresh(ctx)

	return nil
}

func (s *participantService) Cancel() {
	s.mu.Lock()
	s.resetFormLocked()
	s.mu.Unlock()
}

func (s *participantService) Load(participant models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = DraftFromParticipant(participant)
	s.mode = ModeEdit
	s.banner = Banner{Text: msgEditing(participant.ID), Level: BannerInfo}
}

func (s *participantService) Edit(id int) error {
	s.mu.Lock()
	var found *models.Participant
	for i := range s.participants {
		if s.participants[i].ID == id {
			p := s.participants[i]
			found = &p
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return apperrors.NewNotFoundError("participant is not in the loaded list", ErrParticipantNotCached)
	}

	s.Load(*found)
	return nil
}

func (s *participantService) FetchByID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return nil
	}

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	participant, err := s.repository.FindByID(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		logger.Info("Participant lookup failed", "id", id, "error", err)
		s.lookup = nil
		s.banner = Banner{Text: MsgNotFound, Level: BannerError}
		return err
	}

	s.lookup = participant
	s.banner = Banner{}
	return nil
}

func (s *participantService) Delete(ctx context.Context, id int) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	status, err := s.repository.Delete(ctx, id)
	if err != nil {
		logger.Error("Failed to delete participant", "id", id, "error", err)
		s.setBanner(MsgDeleteFailed, BannerError)
		return err
	}

	s.setBanner(status, BannerSuccess)

	_ = s.Refresh(ctx)

	return nil
}

func (s *participantService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	participants := make([]models.Participant, len(s.participants))
	copy(participants, s.participants)

	var lookup *models.Participant
	if s.lookup != nil {
		p := *s.lookup
		lookup = &p
	}

	return Snapshot{
		Participants: participants,
		Draft:        s.draft,
		Mode:         s.mode,
		Lookup:       lookup,
		Banner:       s.banner,
	}
}

func (s *participantService) setBanner(text string, level BannerLevel) {
	s.mu.Lock()
	s.banner = Banner{Text: text, Level: level}
	s.mu.Unlock()
}

func (s *participantService) resetFormLocked() {
	s.draft = Draft{}
	s.mode = ModeCreate
}
