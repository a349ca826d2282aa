package handlers

import (
	"strconv"

	"empowerpwd/api/middleware"
	"empowerpwd/api/response"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

type JobHandlers struct {
	jobs *services.JobService
}

func NewJobHandlers(jobs *services.JobService) *JobHandlers {
	return &JobHandlers{jobs: jobs}
}

// SearchJobs - GET /jobs?q=&location=&type=&limit=&offset=
func (h *JobHandlers) SearchJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	jobs, err := h.jobs.SearchJobs(c.Request.Context(), services.JobQuery{
		Text:           c.Query("q"),
		Location:       c.Query("location"),
		EmploymentType: c.Query("type"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, jobs)
}

// GetJob - GET /jobs/:id
func (h *JobHandlers) GetJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.jobs.GetJob(c.Request.Context(), id, middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// CreateJob - POST /jobs
func (h *JobHandlers) CreateJob(c *gin.Context) {
	var req services.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	job, err := h.jobs.CreateJob(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

// UpdateJob - PUT /jobs/:id
func (h *JobHandlers) UpdateJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req services.JobInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	job, err := h.jobs.UpdateJob(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}

// DeleteJob - DELETE /jobs/:id
func (h *JobHandlers) DeleteJob(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.jobs.DeleteJob(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentRole(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Done(c, "Job deleted")
}

// EmployerJobs - GET /employer/jobs
func (h *JobHandlers) EmployerJobs(c *gin.Context) {
	jobs, err := h.jobs.ListEmployerJobs(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, jobs)
}

// PendingJobs - GET /admin/jobs/pending
func (h *JobHandlers) PendingJobs(c *gin.Context) {
	jobs, err := h.jobs.PendingJobs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, jobs)
}

// ApproveJob - PUT /admin/jobs/:id/approve
func (h *JobHandlers) ApproveJob(c *gin.Context) {
	h.moderate(c, true)
}

// DeclineJob - PUT /admin/jobs/:id/decline
func (h *JobHandlers) DeclineJob(c *gin.Context) {
	h.moderate(c, false)
}

type DeclineJobRequest struct {
	Reason string `json:"reason"`
}

func (h *JobHandlers) moderate(c *gin.Context, approve bool) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req DeclineJobRequest
	if !approve {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidBody(err))
			return
		}
	}
	job, err := h.jobs.ModerateJob(c.Request.Context(), id, approve, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, job)
}
