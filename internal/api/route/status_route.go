package route

import (
	"github.com/gin-gonic/gin"

	"github.com/fleetrent/fleetrent/internal/api/controller"
	"github.com/fleetrent/fleetrent/internal/app"
)

// NewStatusRouter sets up the status endpoint.
func NewStatusRouter(group *gin.RouterGroup, appCtx *app.App) {
	sc := controller.NewStatusController(appCtx.Conn, appCtx.Cache, appCtx.Resolver.Topics())

	group.GET("/status", sc.Get)
}
