package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studio-interiors/site-server/pkg/errors"
)

// attachError records err on the gin context; the observability middleware
// logs it with the request. c.Error returns *gin.Error, which is not needed.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends {"error": message} and attaches err to the context
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) { //nolint:unparam
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// APINotFound answers unknown /api routes
func APINotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Not found", errors.NotFoundError("api route "+c.Request.URL.Path))
}
