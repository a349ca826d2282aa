package handlers

import (
	"errors"
	"io"

	"empowerpwd/api/middleware"
	"empowerpwd/api/response"
	"empowerpwd/models"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

type ApplicationHandlers struct {
	applications *services.ApplicationService
}

func NewApplicationHandlers(applications *services.ApplicationService) *ApplicationHandlers {
	return &ApplicationHandlers{applications: applications}
}

type ApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
}

// Apply - POST /jobs/:id/apply. The body is optional.
func (h *ApplicationHandlers) Apply(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req services.ApplyInput
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, invalidBody(err))
		return
	}
	app, err := h.applications.Apply(c.Request.Context(), middleware.CurrentUserID(c), jobID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// MyApplications - GET /applications/me
func (h *ApplicationHandlers) MyApplications(c *gin.Context) {
	apps, err := h.applications.MyApplications(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, apps)
}

// Withdraw - DELETE /applications/:id
func (h *ApplicationHandlers) Withdraw(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.applications.Withdraw(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, "Application withdrawn")
}

// Applicants - GET /employer/jobs/:id/applications
func (h *ApplicationHandlers) Applicants(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	apps, err := h.applications.Applicants(c.Request.Context(), middleware.CurrentUserID(c), jobID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, apps)
}

// SetStatus - PUT /employer/applications/:id/status
func (h *ApplicationHandlers) SetStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req ApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	app, err := h.applications.SetStatus(c.Request.Context(), middleware.CurrentUserID(c), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, app)
}
