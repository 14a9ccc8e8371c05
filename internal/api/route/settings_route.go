package route

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetrent/fleetrent/internal/api/controller"
	"github.com/fleetrent/fleetrent/internal/api/middleware"
	"github.com/fleetrent/fleetrent/internal/settings"
)

// NewSettingsRouter sets up the settings resolution/save routes.
func NewSettingsRouter(timeout time.Duration, group *gin.RouterGroup, resolver *settings.Resolver) {
	sc := controller.NewSettingsController(resolver)
	timeoutMiddleware := middleware.RequestTimeout(timeout)

	group.GET("/settings/:topic", timeoutMiddleware, sc.Get)
	group.PUT("/settings/:topic", timeoutMiddleware, sc.Save)
	group.POST("/settings/:topic/reload", timeoutMiddleware, sc.Reload)
}
