package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/participant-console/config"
	"github.com/akeren/participant-console/config/router"
	"github.com/akeren/participant-console/domain"
	"github.com/akeren/participant-console/internal/log"
	"github.com/akeren/participant-console/internal/models"
	"github.com/akeren/participant-console/pkg/restclient"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type consoleSnapshot struct {
	Participants []models.Participant `json:"participants"`
	Draft        map[string]string    `json:"draft"`
	Mode         string               `json:"mode"`
	Lookup       *models.Participant  `json:"lookup"`
	Banner       struct {
		Text  string `json:"text"`
		Level string `json:"level"`
	} `json:"banner"`
}

type ConsoleAPITestSuite struct {
	suite.Suite
	upstream  *participantAPI
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	appConfig *config.ApplicationConfig
}

func ada() models.Participant {
	return models.Participant{
		ID:           1,
		Name:         "Ada",
		Gender:       models.GenderFemale,
		Email:        "ada@example.com",
		Contact:      "555-0101",
		EventName:    "GopherCon",
		Role:         "Attendee",
		Organization: "Analytical Engines",
	}
}

func validDraft() map[string]string {
	return map[string]string{
		"id":           "5",
		"name":         "A",
		"gender":       "MALE",
		"email":        "a@x.com",
		"contact":      "1",
		"eventName":    "Conf",
		"role":         "Speaker",
		"organization": "Org",
	}
}

func (suite *ConsoleAPITestSuite) SetupSuite() {
	suite.logger = log.NewLoggerWithJSONOutput()
	suite.upstream = newParticipantAPI()
}

func (suite *ConsoleAPITestSuite) TearDownSuite() {
	if suite.upstream != nil {
		suite.upstream.Close()
	}
}

// SetupTest mounts a fresh console so no state leaks between tests.
func (suite *ConsoleAPITestSuite) SetupTest() {
	suite.upstream.reset(ada())

	routerService := router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	client, err := restclient.New(&restclient.Config{
		BaseURL:    suite.upstream.URL(),
		Timeout:    5 * time.Second,
		Registerer: routerService.MetricsRegistry(),
		Logger:     suite.logger,
	})
	suite.Require().NoError(err)

	suite.appConfig = &config.ApplicationConfig{
		RouterService:  routerService,
		ParticipantAPI: client,
		Logger:         suite.logger,
	}

	service := domain.SetupCoreDomain(suite.appConfig)
	suite.Require().NoError(domain.PrimeParticipants(context.Background(), service, suite.logger, domain.InitialRefreshTimeout))

	suite.server = httptest.NewServer(routerService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *ConsoleAPITestSuite) TearDownTest() {
	if suite.server != nil {
		suite.server.Close()
	}
	suite.appConfig.RouterService.Cleanup()
}

func (suite *ConsoleAPITestSuite) call(method, path string, body any) (int, envelope, consoleSnapshot) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.baseURL+path, reader)
	suite.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))

	var snapshot consoleSnapshot
	if len(env.Data) > 0 && env.Data[0] == '{' {
		_ = json.Unmarshal(env.Data, &snapshot)
	}

	return resp.StatusCode, env, snapshot
}

func (suite *ConsoleAPITestSuite) TestHealthCheck() {
	status, env, _ := suite.call(http.MethodGet, "/health", nil)

	suite.Equal(http.StatusOK, status)
	suite.Contains(env.Message, "health check completed")

	var health map[string]float64
	suite.Require().NoError(json.Unmarshal(env.Data, &health))
	suite.Equal(float64(1), health["upstream"])
	suite.Equal(float64(0), health["cache"])
	suite.Contains(health, "uptime")
}

func (suite *ConsoleAPITestSuite) TestSnapshotShowsMountedList() {
	status, _, snapshot := suite.call(http.MethodGet, "/v1/console", nil)

	suite.Equal(http.StatusOK, status)
	suite.Require().Len(snapshot.Participants, 1)
	suite.Equal("Ada", snapshot.Participants[0].Name)
	suite.Equal("create", snapshot.Mode)
	suite.Nil(snapshot.Lookup)
}

func (suite *ConsoleAPITestSuite) TestCreateParticipant() {
	status, _, _ := suite.call(http.MethodPut, "/v1/console/draft", validDraft())
	suite.Require().Equal(http.StatusOK, status)

	status, env, snapshot := suite.call(http.MethodPost, "/v1/console/submit", nil)

	suite.Equal(http.StatusOK, status)
	suite.Equal("Participant added successfully.", env.Message)
	suite.Equal("success", snapshot.Banner.Level)
	suite.Len(snapshot.Participants, 2)
	suite.Equal("", snapshot.Draft["name"])
	suite.Equal("create", snapshot.Mode)

	saved, ok := suite.upstream.record(5)
	suite.Require().True(ok)
	suite.Equal(models.GenderMale, saved.Gender)
}

func (suite *ConsoleAPITestSuite) TestSubmitRejectsIncompleteDraft() {
	status, _, _ := suite.call(http.MethodPatch, "/v1/console/draft", map[string]any{
		"fields": map[string]string{"name": "A"},
	})
	suite.Require().Equal(http.StatusOK, status)

	status, env, snapshot := suite.call(http.MethodPost, "/v1/console/submit", nil)

	suite.Equal(http.StatusBadRequest, status)
	suite.Equal("Please fill out the id field.", env.Message)
	suite.Equal("error", snapshot.Banner.Level)
	suite.Equal("A", snapshot.Draft["name"])
}

func (suite *ConsoleAPITestSuite) TestPatchDraftRejectsUnknownFields() {
	status, env, _ := suite.call(http.MethodPatch, "/v1/console/draft", map[string]any{
		"fields": map[string]string{"nickname": "Al", "name": "A"},
	})

	suite.Equal(http.StatusBadRequest, status)
	suite.Equal("Unknown draft fields", env.Message)

	_, _, snapshot := suite.call(http.MethodGet, "/v1/console", nil)
	suite.Equal("", snapshot.Draft["name"])
}

func (suite *ConsoleAPITestSuite) TestEditAndUpdateParticipant() {
	status, env, snapshot := suite.call(http.MethodPost, "/v1/console/edit/1", nil)

	suite.Require().Equal(http.StatusOK, status)
	suite.Equal("Editing participant with ID 1", env.Message)
	suite.Equal("edit", snapshot.Mode)
	suite.Equal("Ada", snapshot.Draft["name"])

	status, _, _ = suite.call(http.MethodPatch, "/v1/console/draft", map[string]any{
		"fields": map[string]string{"role": "Speaker"},
	})
	suite.Require().Equal(http.StatusOK, status)

	status, env, snapshot = suite.call(http.MethodPost, "/v1/console/submit", nil)

	suite.Equal(http.StatusOK, status)
	suite.Equal("Participant updated successfully.", env.Message)
	suite.Equal("create", snapshot.Mode)

	saved, _ := suite.upstream.record(1)
	suite.Equal("Speaker", saved.Role)
}

func (suite *ConsoleAPITestSuite) TestEditUnknownParticipant() {
	status, env, _ := suite.call(http.MethodPost, "/v1/console/edit/42", nil)

	suite.Equal(http.StatusNotFound, status)
	suite.Equal("Participant not found.", env.Message)
}

func (suite *ConsoleAPITestSuite) TestCancelLeavesEditMode() {
	suite.call(http.MethodPost, "/v1/console/edit/1", nil)

	status, _, snapshot := suite.call(http.MethodPost, "/v1/console/cancel", nil)

	suite.Equal(http.StatusOK, status)
	suite.Equal("create", snapshot.Mode)
	suite.Equal("", snapshot.Draft["id"])
}

func (suite *ConsoleAPITestSuite) TestLookup() {
	status, _, snapshot := suite.call(http.MethodGet, "/v1/console/lookup?id=1", nil)

	suite.Equal(http.StatusOK, status)
	suite.Require().NotNil(snapshot.Lookup)
	suite.Equal("Ada", snapshot.Lookup.Name)

	status, env, snapshot := suite.call(http.MethodGet, "/v1/console/lookup?id=99", nil)

	suite.Equal(http.StatusNotFound, status)
	suite.Equal("Participant not found.", env.Message)
	suite.Nil(snapshot.Lookup)
}

func (suite *ConsoleAPITestSuite) TestLookupBlankIDIsIgnored() {
	suite.call(http.MethodGet, "/v1/console/lookup?id=1", nil)

	status, _, snapshot := suite.call(http.MethodGet, "/v1/console/lookup?id=%20%20", nil)

	suite.Equal(http.StatusOK, status)
	suite.Require().NotNil(snapshot.Lookup)
	suite.Equal(1, snapshot.Lookup.ID)
}

func (suite *ConsoleAPITestSuite) TestDeleteParticipant() {
	status, env, snapshot := suite.call(http.MethodDelete, "/v1/console/participants/1", nil)

	suite.Equal(http.StatusOK, status)
	suite.Equal("Deleted", env.Message)
	suite.Empty(snapshot.Participants)

	_, ok := suite.upstream.record(1)
	suite.False(ok)
}

func (suite *ConsoleAPITestSuite) TestRefreshFailureKeepsCachedList() {
	suite.upstream.setFailing(true)

	status, env, snapshot := suite.call(http.MethodPost, "/v1/console/refresh", nil)

	suite.Equal(http.StatusBadGateway, status)
	suite.Equal("Failed to fetch participants.", env.Message)
	suite.Len(snapshot.Participants, 1)
}

func (suite *ConsoleAPITestSuite) TestUpstreamMetricsExposed() {
	resp, err := http.Get(suite.baseURL + "/metrics")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(body), "participant_api_requests_total")
}

func TestConsoleAPITestSuite(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "true")
	suite.Run(t, new(ConsoleAPITestSuite))
}
