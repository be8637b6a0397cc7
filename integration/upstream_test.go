package integration

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/akeren/participant-console/internal/models"
	"github.com/gin-gonic/gin"
)

// participantAPI is an in-memory stand-in for the remote participant service.
type participantAPI struct {
	mu      sync.Mutex
	records map[int]models.Participant
	failing bool
	server  *httptest.Server
}

func newParticipantAPI() *participantAPI {
	gin.SetMode(gin.TestMode)

	api := &participantAPI{records: map[int]models.Participant{}}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		api.mu.Lock()
		failing := api.failing
		api.mu.Unlock()
		if failing {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Next()
	})

	g := r.Group("/participantapi")
	g.GET("/all", api.listAll)
	g.GET("/get/:id", api.getByID)
	g.POST("/add", api.save)
	g.PUT("/update", api.save)
	g.DELETE("/delete/:id", api.delete)

	api.server = httptest.NewServer(r)
	return api
}

func (api *participantAPI) URL() string {
	return api.server.URL
}

func (api *participantAPI) Close() {
	api.server.Close()
}

func (api *participantAPI) reset(seed ...models.Participant) {
	api.mu.Lock()
	defer api.mu.Unlock()

	api.failing = false
	api.records = map[int]models.Participant{}
	for _, p := range seed {
		api.records[p.ID] = p
	}
}

func (api *participantAPI) setFailing(failing bool) {
	api.mu.Lock()
	api.failing = failing
	api.mu.Unlock()
}

func (api *participantAPI) record(id int) (models.Participant, bool) {
	api.mu.Lock()
	defer api.mu.Unlock()
	p, ok := api.records[id]
	return p, ok
}

func (api *participantAPI) listAll(c *gin.Context) {
	api.mu.Lock()
	defer api.mu.Unlock()

	out := make([]models.Participant, 0, len(api.records))
	for _, p := range api.records {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	c.JSON(http.StatusOK, out)
}

func (api *participantAPI) getByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	p, ok := api.records[id]
	if !ok {
		c.Data(http.StatusOK, "application/json", []byte("null"))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (api *participantAPI) save(c *gin.Context) {
	var p models.Participant
	if err := c.ShouldBindJSON(&p); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	api.mu.Lock()
	api.records[p.ID] = p
	api.mu.Unlock()

	c.JSON(http.StatusOK, p)
}

func (api *participantAPI) delete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	api.mu.Lock()
	delete(api.records, id)
	api.mu.Unlock()

	c.String(http.StatusOK, "Deleted")
}
