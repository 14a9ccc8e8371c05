package route

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetrent/fleetrent/internal/api/controller"
	"github.com/fleetrent/fleetrent/internal/api/middleware"
)

// NewEntityRouter sets up the generic list/CRUD routes for whitelisted
// entities (rentals, vehicles, bookings, users).
func NewEntityRouter(timeout time.Duration, group *gin.RouterGroup,
	svc controller.ListingService, writer controller.EntityWriter) {
	ec := controller.NewEntityController(svc, writer)
	timeoutMiddleware := middleware.RequestTimeout(timeout)

	group.GET("/:entity", timeoutMiddleware, ec.List)
	group.POST("/:entity", timeoutMiddleware, ec.Create)
	group.PUT("/:entity/:id", timeoutMiddleware, ec.Update)
	group.DELETE("/:entity/:id", timeoutMiddleware, ec.Delete)
}
