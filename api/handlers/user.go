package handlers

import (
	"fmt"
	"strconv"

	"empowerpwd/api/middleware"
	"empowerpwd/api/response"
	"empowerpwd/models"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

type UserHandlers struct {
	users *services.UserService
}

func NewUserHandlers(users *services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

// Me - GET /users/me
func (h *UserHandlers) Me(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// UserGet - GET /users/:id, returns the public summary only.
func (h *UserHandlers) UserGet(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	summaries, err := h.users.Summaries(c.Request.Context(), []int64{id})
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, ok := summaries[id]
	if !ok {
		response.Error(c, fmt.Errorf("%w: user %d", services.ErrNotFound, id))
		return
	}
	response.OK(c, summary)
}

// ListUsers - GET /admin/users?role=&limit=&offset=
func (h *UserHandlers) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.users.ListUsers(c.Request.Context(), models.Role(c.Query("role")), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

type VerifyUserRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// VerifyUser - PUT /admin/users/:id/verify
func (h *UserHandlers) VerifyUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req VerifyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	if err := h.users.SetVerified(c.Request.Context(), id, *req.Verified); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, "User updated")
}
