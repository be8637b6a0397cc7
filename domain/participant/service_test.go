package participant

import (
	"context"
	"testing"

	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/internal/models"
	apperrors "github.com/akeren/participant-console/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*MockParticipantRepository, ParticipantService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockParticipantRepository(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	service := NewParticipantService(logger, mockRepo)
	return mockRepo, service
}

func validDraft() Draft {
	return Draft{
		ID:           "5",
		Name:         "A",
		Gender:       "MALE",
		Email:        "a@x.com",
		Contact:      "1",
		EventName:    "Conf",
		Role:         "Speaker",
		Organization: "Org",
	}
}

func sampleParticipant(id int) models.Participant {
	return models.Participant{
		ID:           id,
		Name:         "Ada",
		Gender:       models.GenderFemale,
		Email:        "ada@example.com",
		Contact:      "555-0101",
		EventName:    "GopherCon",
		Role:         "Attendee",
		Organization: "Analytical Engines",
	}
}

func TestRefresh_ReplacesCache(t *testing.T) {
	mockRepo, service := newTestService(t)

	first := []models.Participant{sampleParticipant(1), sampleParticipant(2)}
	second := []models.Participant{sampleParticipant(3)}

	gomock.InOrder(
		mockRepo.EXPECT().ListAll(gomock.Any()).Return(first, nil),
		mockRepo.EXPECT().ListAll(gomock.Any()).Return(second, nil),
	)

	require.NoError(t, service.Refresh(context.Background()))
	assert.Len(t, service.Snapshot().Participants, 2)

	require.NoError(t, service.Refresh(context.Background()))
	assert.Equal(t, second, service.Snapshot().Participants)
}

func TestRefresh_FailureKeepsPreviousCache(t *testing.T) {
	mockRepo, service := newTestService(t)

	cached := []models.Participant{sampleParticipant(1)}
	gomock.InOrder(
		mockRepo.EXPECT().ListAll(gomock.Any()).Return(cached, nil),
		mockRepo.EXPECT().ListAll(gomock.Any()).Return(nil, apperrors.NewUpstreamError("down", nil)),
	)

	require.NoError(t, service.Refresh(context.Background()))
	assert.Error(t, service.Refresh(context.Background()))

	snap := service.Snapshot()
	assert.Equal(t, cached, snap.Participants)
	assert.Equal(t, MsgFetchAllFailed, snap.Banner.Text)
	assert.True(t, snap.Banner.IsError())
}

func TestSubmit_MissingFieldNeverCallsNetwork(t *testing.T) {
	for _, field := range DraftFields {
		field := field
		t.Run(field, func(t *testing.T) {
			_, service := newTestService(t)

			draft := validDraft()
			require.NoError(t, draft.Set(field, "   "))
			service.SetDraft(draft)

			err := service.Submit(context.Background())

			assert.True(t, apperrors.IsInvalidRequest(err))
			assert.Equal(t, "Please fill out the "+field+" field.", service.Snapshot().Banner.Text)
			assert.Equal(t, draft, service.Snapshot().Draft)
		})
	}
}

func TestSubmit_ReportsFirstMissingFieldInFormOrder(t *testing.T) {
	_, service := newTestService(t)

	service.SetDraft(Draft{ID: "abc", Gender: "MALE"})

	err := service.Submit(context.Background())

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, FieldName, validationErr.Field)
	assert.Equal(t, "Please fill out the name field.", service.Snapshot().Banner.Text)
}

func TestSubmit_RejectsNonNumericID(t *testing.T) {
	_, service := newTestService(t)

	draft := validDraft()
	draft.ID = "5abc"
	service.SetDraft(draft)

	err := service.Submit(context.Background())

	assert.True(t, apperrors.IsInvalidRequest(err))
	assert.Equal(t, MsgInvalidID, service.Snapshot().Banner.Text)
}

func TestSubmit_RejectsUnknownGender(t *testing.T) {
	_, service := newTestService(t)

	draft := validDraft()
	draft.Gender = "OTHER"
	service.SetDraft(draft)

	err := service.Submit(context.Background())

	assert.True(t, apperrors.IsInvalidRequest(err))
	assert.Equal(t, MsgInvalidGender, service.Snapshot().Banner.Text)
}

func TestSubmit_CreateCoercesIDRefreshesOnceAndResets(t *testing.T) {
	mockRepo, service := newTestService(t)

	refreshed := []models.Participant{sampleParticipant(5)}

	gomock.InOrder(
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Participant) error {
				assert.Equal(t, &models.Participant{
					ID:           5,
					Name:         "A",
					Gender:       models.GenderMale,
					Email:        "a@x.com",
					Contact:      "1",
					EventName:    "Conf",
					Role:         "Speaker",
					Organization: "Org",
				}, p)
				return nil
			},
		),
		mockRepo.EXPECT().ListAll(gomock.Any()).Return(refreshed, nil).Times(1),
	)

	service.SetDraft(validDraft())
	require.NoError(t, service.Submit(context.Background()))

	snap := service.Snapshot()
	assert.True(t, snap.Draft.IsBlank())
	assert.Equal(t, ModeCreate, snap.Mode)
	assert.Equal(t, MsgAdded, snap.Banner.Text)
	assert.Equal(t, refreshed, snap.Participants)
}

func TestSubmit_EditModeUpdatesAndResets(t *testing.T) {
	mockRepo, service := newTestService(t)

	service.Load(sampleParticipant(7))
	require.NoError(t, service.SetField(FieldRole, "Speaker"))

	gomock.InOrder(
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Participant) error {
				assert.Equal(t, 7, p.ID)
				assert.Equal(t, "Speaker", p.Role)
				return nil
			},
		),
		mockRepo.EXPECT().ListAll(gomock.Any()).Return([]models.Participant{}, nil).Times(1),
	)

	require.NoError(t, service.Submit(context.Background()))

	snap := service.Snapshot()
	assert.Equal(t, MsgUpdated, snap.Banner.Text)
	assert.Equal(t, ModeCreate, snap.Mode)
	assert.True(t, snap.Draft.IsBlank())
}

func TestSubmit_FailureKeepsDraftForRetry(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.NewUpstreamError("rejected", nil))

	service.SetDraft(validDraft())
	err := service.Submit(context.Background())

	assert.Error(t, err)
	snap := service.Snapshot()
	assert.Equal(t, MsgAddFailed, snap.Banner.Text)
	assert.Equal(t, validDraft(), snap.Draft)
	assert.Equal(t, ModeCreate, snap.Mode)
}

func TestSubmit_UpdateFailureKeepsEditMode(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(apperrors.NewUpstreamError("rejected", nil))

	service.Load(sampleParticipant(3))
	assert.Error(t, service.Submit(context.Background()))

	snap := service.Snapshot()
	assert.Equal(t, MsgUpdateFailed, snap.Banner.Text)
	assert.Equal(t, ModeEdit, snap.Mode)
	assert.Equal(t, "3", snap.Draft.ID)
}

func TestSubmit_RefreshFailureAfterSuccessStillResets(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	mockRepo.EXPECT().ListAll(gomock.Any()).Return(nil, apperrors.NewUpstreamError("down", nil))

	service.SetDraft(validDraft())
	require.NoError(t, service.Submit(context.Background()))

	snap := service.Snapshot()
	assert.True(t, snap.Draft.IsBlank())
	assert.Equal(t, MsgFetchAllFailed, snap.Banner.Text)
}

func TestLoad_CopiesEveryFieldAndEntersEditMode(t *testing.T) {
	_, service := newTestService(t)

	p := sampleParticipant(12)
	service.Load(p)

	snap := service.Snapshot()
	assert.Equal(t, ModeEdit, snap.Mode)
	assert.Equal(t, Draft{
		ID:           "12",
		Name:         p.Name,
		Gender:       string(p.Gender),
		Email:        p.Email,
		Contact:      p.Contact,
		EventName:    p.EventName,
		Role:         p.Role,
		Organization: p.Organization,
	}, snap.Draft)
	assert.Equal(t, "Editing participant with ID 12", snap.Banner.Text)
}

func TestEdit_LoadsFromCache(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().ListAll(gomock.Any()).Return([]models.Participant{sampleParticipant(1), sampleParticipant(2)}, nil)
	require.NoError(t, service.Refresh(context.Background()))

	require.NoError(t, service.Edit(2))
	assert.Equal(t, "2", service.Snapshot().Draft.ID)

	err := service.Edit(99)
	assert.True(t, apperrors.IsNotFound(err))
	assert.ErrorIs(t, err, ErrParticipantNotCached)
	assert.Equal(t, "2", service.Snapshot().Draft.ID)
}

func TestCancel_ResetsToCreate(t *testing.T) {
	_, service := newTestService(t)

	service.Load(sampleParticipant(4))
	service.Cancel()

	snap := service.Snapshot()
	assert.Equal(t, ModeCreate, snap.Mode)
	assert.True(t, snap.Draft.IsBlank())
}

func TestSetField_UnknownField(t *testing.T) {
	_, service := newTestService(t)

	err := service.SetField("nickname", "x")

	assert.True(t, apperrors.IsInvalidRequest(err))
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFetchByID_BlankIsNoop(t *testing.T) {
	mockRepo, service := newTestService(t)

	p := sampleParticipant(1)
	mockRepo.EXPECT().FindByID(gomock.Any(), "1").Return(&p, nil)
	require.NoError(t, service.FetchByID(context.Background(), "1"))

	require.NoError(t, service.FetchByID(context.Background(), ""))
	require.NoError(t, service.FetchByID(context.Background(), "  "))

	assert.Equal(t, &p, service.Snapshot().Lookup)
}

func TestFetchByID_SuccessClearsBanner(t *testing.T) {
	mockRepo, service := newTestService(t)

	service.Load(sampleParticipant(3))

	p := sampleParticipant(8)
	mockRepo.EXPECT().FindByID(gomock.Any(), "8").Return(&p, nil)

	require.NoError(t, service.FetchByID(context.Background(), "8"))

	snap := service.Snapshot()
	assert.True(t, snap.Banner.IsEmpty())
	assert.Equal(t, 8, snap.Lookup.ID)
	assert.Equal(t, ModeEdit, snap.Mode)
}

func TestFetchByID_FailureClearsPreviousResult(t *testing.T) {
	mockRepo, service := newTestService(t)

	p := sampleParticipant(1)
	gomock.InOrder(
		mockRepo.EXPECT().FindByID(gomock.Any(), "1").Return(&p, nil),
		mockRepo.EXPECT().FindByID(gomock.Any(), "2").Return(nil, apperrors.NewNotFoundError("participant not found", nil)),
	)

	require.NoError(t, service.FetchByID(context.Background(), "1"))
	assert.Error(t, service.FetchByID(context.Background(), "2"))

	snap := service.Snapshot()
	assert.Nil(t, snap.Lookup)
	assert.Equal(t, MsgNotFound, snap.Banner.Text)
}

func TestDelete_ShowsBodyAndRefreshes(t *testing.T) {
	mockRepo, service := newTestService(t)

	gomock.InOrder(
		mockRepo.EXPECT().Delete(gomock.Any(), 5).Return("Deleted", nil),
		mockRepo.EXPECT().ListAll(gomock.Any()).Return([]models.Participant{}, nil).Times(1),
	)

	require.NoError(t, service.Delete(context.Background(), 5))

	snap := service.Snapshot()
	assert.Equal(t, "Deleted", snap.Banner.Text)
	assert.Empty(t, snap.Participants)
}

func TestDelete_FailureShowsGenericMessage(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().Delete(gomock.Any(), 5).Return("", apperrors.NewUpstreamError("boom", nil))

	assert.Error(t, service.Delete(context.Background(), 5))
	assert.Equal(t, MsgDeleteFailed, service.Snapshot().Banner.Text)
}

func TestSnapshot_IsACopy(t *testing.T) {
	mockRepo, service := newTestService(t)

	mockRepo.EXPECT().ListAll(gomock.Any()).Return([]models.Participant{sampleParticipant(1)}, nil)
	require.NoError(t, service.Refresh(context.Background()))

	snap := service.Snapshot()
	snap.Participants[0].Name = "changed"

	assert.Equal(t, "Ada", service.Snapshot().Participants[0].Name)
}
