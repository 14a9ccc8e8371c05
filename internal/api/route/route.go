package route

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fleetrent/fleetrent/internal/api/middleware"
	"github.com/fleetrent/fleetrent/internal/app"
)

// SetupRoutes builds the gin engine with all API routes attached.
func SetupRoutes(appCtx *app.App, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "UP"})
	})

	api := r.Group("/api")
	timeout := appCtx.Config.Server.RequestTimeout

	NewSettingsRouter(timeout, api, appCtx.Resolver)
	NewEntityRouter(timeout, api, appCtx.Listing, appCtx.Store)
	NewStatusRouter(api, appCtx)

	return r
}
