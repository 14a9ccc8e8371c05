package controller

import (
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
)

// abortWithError maps an errdefs-classified error onto an HTTP status and a
// uniform error body.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errdefs.IsInvalidArgument(err):
		status = http.StatusBadRequest
	case errdefs.IsNotFound(err):
		status = http.StatusNotFound
	case errdefs.IsUnavailable(err):
		status = http.StatusBadGateway
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": err.Error()})
}
