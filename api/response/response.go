package response

import (
	"errors"
	"net/http"

	"empowerpwd/logger"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

// OK writes {success: true, data}.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Done writes a success envelope without payload.
func Done(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// Fail aborts with {success: false, message}.
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// Error maps a service error onto the envelope. Details of store and
// unexpected errors are logged, never returned.
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"success": false, "message": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": http.StatusText(status), "error": err.Error()})
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
