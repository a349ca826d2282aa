package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"empowerpwd/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: empty", services.ErrValidation):    http.StatusBadRequest,
		services.ErrUnauthorized:                           http.StatusUnauthorized,
		services.ErrForbidden:                              http.StatusForbidden,
		fmt.Errorf("%w: user 1", services.ErrNotFound):     http.StatusNotFound,
		services.ErrConflict:                               http.StatusConflict,
		&services.StoreError{Op: "x", Err: errors.New("")}: http.StatusInternalServerError,
		errors.New("boom"):                                 http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, &services.StoreError{Op: "create message", Err: errors.New("connection refused")})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorExposesValidationMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, fmt.Errorf("%w: message is required", services.ErrValidation))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message is required")
	assert.True(t, c.IsAborted())
}
