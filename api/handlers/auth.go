package handlers

import (
	"empowerpwd/api/response"
	"empowerpwd/models"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthHandlers struct {
	users *services.UserService
}

func NewAuthHandlers(users *services.UserService) *AuthHandlers {
	return &AuthHandlers{users: users}
}

// Register - POST /auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Login - POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, LoginResponse{Token: token, User: user})
}
