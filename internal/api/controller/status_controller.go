package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetrent/fleetrent/internal/cache"
	"github.com/fleetrent/fleetrent/internal/connectivity"
	"github.com/fleetrent/fleetrent/internal/store"
)

// StatusResponse is what /api/status returns; admin screens use it to render
// the online/offline badge.
type StatusResponse struct {
	Status      string   `json:"status"`
	Online      bool     `json:"online"`
	CachedItems int      `json:"cachedItems"`
	Topics      []string `json:"topics"`
	Entities    []string `json:"entities"`
}

// StatusController reports connectivity and cache state.
type StatusController struct {
	conn   *connectivity.Observer
	cache  *cache.Store
	topics []string
}

// NewStatusController creates a StatusController.
func NewStatusController(conn *connectivity.Observer, qc *cache.Store, topics []string) *StatusController {
	return &StatusController{conn: conn, cache: qc, topics: topics}
}

// Get returns the service status snapshot.
func (sc *StatusController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:      "UP",
		Online:      sc.conn.Online(),
		CachedItems: sc.cache.Len(),
		Topics:      sc.topics,
		Entities:    store.EntityNames(),
	})
}
