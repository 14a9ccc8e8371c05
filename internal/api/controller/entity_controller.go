package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetrent/fleetrent/internal/listing"
)

// EntityWriter is the write surface of the remote store needed by the
// generic entity handlers.
type EntityWriter interface {
	Insert(ctx context.Context, entity string, fields map[string]any) (string, error)
	Update(ctx context.Context, entity, id string, fields map[string]any) error
	Delete(ctx context.Context, entity, id string) error
}

// ListingService is the paginated-query surface.
type ListingService interface {
	Query(ctx context.Context, entity string, p listing.Params) (listing.Result, error)
	Invalidate(entity string) int
}

// EntityController provides generic list/create/update/delete handlers for
// whitelisted entities. Every write invalidates the entity's cached pages so
// subsequent reads are fresh.
type EntityController struct {
	listing ListingService
	writer  EntityWriter
}

// NewEntityController creates an EntityController.
func NewEntityController(svc ListingService, writer EntityWriter) *EntityController {
	return &EntityController{listing: svc, writer: writer}
}

// listQueryDTO binds the common list parameters; everything else in the
// query string is treated as a column filter and validated by the store's
// whitelist.
type listQueryDTO struct {
	Page      int        `form:"page" binding:"omitempty,min=1"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string     `form:"search"`
	SortBy    string     `form:"sort_by"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	DateFrom  *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo    *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// reservedParams are query keys that are not column filters.
var reservedParams = map[string]bool{
	"page": true, "limit": true, "search": true,
	"sort_by": true, "sort_order": true, "date_from": true, "date_to": true,
}

// List handles GET requests for a filtered, sorted, paginated entity page.
func (ec *EntityController) List(c *gin.Context) {
	var dto listQueryDTO
	if err := c.ShouldBindQuery(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	filters := map[string]string{}
	for key, vals := range c.Request.URL.Query() {
		if reservedParams[key] || len(vals) == 0 || vals[0] == "" {
			continue
		}
		filters[key] = vals[0]
	}

	result, err := ec.listing.Query(c.Request.Context(), c.Param("entity"), listing.Params{
		Page:      dto.Page,
		Limit:     dto.Limit,
		Filters:   filters,
		DateFrom:  dto.DateFrom,
		DateTo:    dto.DateTo,
		Search:    dto.Search,
		SortBy:    dto.SortBy,
		SortOrder: dto.SortOrder,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create handles POST requests to insert a row.
func (ec *EntityController) Create(c *gin.Context) {
	entity := c.Param("entity")

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	id, err := ec.writer.Insert(c.Request.Context(), entity, fields)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ec.listing.Invalidate(entity)
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": id})
}

// Update handles PUT requests to patch a row.
func (ec *EntityController) Update(c *gin.Context) {
	entity := c.Param("entity")

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid payload"})
		return
	}

	if err := ec.writer.Update(c.Request.Context(), entity, c.Param("id"), fields); err != nil {
		abortWithError(c, err)
		return
	}

	ec.listing.Invalidate(entity)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete handles DELETE requests to remove a row.
func (ec *EntityController) Delete(c *gin.Context) {
	entity := c.Param("entity")

	if err := ec.writer.Delete(c.Request.Context(), entity, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	ec.listing.Invalidate(entity)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
