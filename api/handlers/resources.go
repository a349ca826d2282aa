package handlers

import (
	"empowerpwd/api/middleware"
	"empowerpwd/api/response"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

type ResourceHandlers struct {
	resources *services.ResourceService
}

func NewResourceHandlers(resources *services.ResourceService) *ResourceHandlers {
	return &ResourceHandlers{resources: resources}
}

// ListResources - GET /resources?category=
func (h *ResourceHandlers) ListResources(c *gin.Context) {
	resources, err := h.resources.ListResources(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resources)
}

// CreateResource - POST /admin/resources
func (h *ResourceHandlers) CreateResource(c *gin.Context) {
	var req services.ResourceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	res, err := h.resources.CreateResource(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// DeleteResource - DELETE /admin/resources/:id
func (h *ResourceHandlers) DeleteResource(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.resources.DeleteResource(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, "Resource deleted")
}
