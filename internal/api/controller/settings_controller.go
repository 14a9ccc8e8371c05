package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetrent/fleetrent/internal/settings"
)

// SettingsResolver is the settings surface the controller consumes.
type SettingsResolver interface {
	Resolve(ctx context.Context, topic string) (settings.Resolution, error)
	Reload(ctx context.Context, topic string) (settings.Resolution, error)
	Save(ctx context.Context, topic string, patch map[string]any, actor string) (settings.Record, error)
}

// SettingsController exposes the settings resolution and save surface.
// Consumers get {record, source, online} back and must render provenance;
// they never re-derive fallback logic themselves.
type SettingsController struct {
	resolver SettingsResolver
}

// NewSettingsController creates a SettingsController.
func NewSettingsController(resolver SettingsResolver) *SettingsController {
	return &SettingsController{resolver: resolver}
}

// savePayload is the PUT body: a partial field patch.
type savePayload struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

// Get resolves the topic through the tier chain.
func (sc *SettingsController) Get(c *gin.Context) {
	res, err := sc.resolver.Resolve(c.Request.Context(), c.Param("topic"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Reload forces a fresh remote read, bypassing in-flight deduplication.
func (sc *SettingsController) Reload(c *gin.Context) {
	res, err := sc.resolver.Reload(c.Request.Context(), c.Param("topic"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Save validates and persists a settings patch. Validation failures come
// back as 400 before any remote call; remote write failures are surfaced as
// 502, never silently absorbed.
func (sc *SettingsController) Save(c *gin.Context) {
	var payload savePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	actor := c.GetHeader("X-Actor")
	if actor == "" {
		actor = "unknown"
	}

	rec, err := sc.resolver.Save(c.Request.Context(), c.Param("topic"), payload.Fields, actor)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "record": rec})
}
