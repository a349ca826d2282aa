package routes

import (
	"empowerpwd/api/handlers"
	"empowerpwd/api/middleware"
	"empowerpwd/models"

	"github.com/gin-gonic/gin"
)

func PublicApi(router *gin.Engine, deps Deps) *gin.RouterGroup {
	auth := handlers.NewAuthHandlers(deps.Users)
	users := handlers.NewUserHandlers(deps.Users)
	jobs := handlers.NewJobHandlers(deps.Jobs)
	applications := handlers.NewApplicationHandlers(deps.Applications)
	resources := handlers.NewResourceHandlers(deps.Resources)
	requireAuth := middleware.AuthMiddleware(deps.Tokens)

	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("auth/register", auth.Register)
		publicEndpoints.POST("auth/login", auth.Login)

		publicEndpoints.GET("users/me", requireAuth, users.Me)
		publicEndpoints.GET("users/:id", requireAuth, users.UserGet)

		publicEndpoints.GET("jobs", jobs.SearchJobs)
		publicEndpoints.GET("jobs/:id", middleware.OptionalAuthMiddleware(deps.Tokens), jobs.GetJob)

		publicEndpoints.GET("resources", resources.ListResources)
	}

	seeker := router.Group("/api/v1/", requireAuth, middleware.RequireRole(models.RoleJobSeeker))
	{
		seeker.POST("jobs/:id/apply", applications.Apply)
		seeker.GET("applications/me", applications.MyApplications)
		seeker.DELETE("applications/:id", applications.Withdraw)
	}

	employer := router.Group("/api/v1/", requireAuth, middleware.RequireRole(models.RoleEmployer))
	{
		employer.POST("jobs", jobs.CreateJob)
		employer.PUT("jobs/:id", jobs.UpdateJob)
		employer.GET("employer/jobs", jobs.EmployerJobs)
		employer.GET("employer/jobs/:id/applications", applications.Applicants)
		employer.PUT("employer/applications/:id/status", applications.SetStatus)
	}
	router.DELETE("/api/v1/jobs/:id", requireAuth, middleware.RequireRole(models.RoleEmployer, models.RoleAdmin), jobs.DeleteJob)

	admin := router.Group("/api/v1/admin/", requireAuth, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("jobs/pending", jobs.PendingJobs)
		admin.PUT("jobs/:id/approve", jobs.ApproveJob)
		admin.PUT("jobs/:id/decline", jobs.DeclineJob)
		admin.GET("users", users.ListUsers)
		admin.PUT("users/:id/verify", users.VerifyUser)
		admin.POST("resources", resources.CreateResource)
		admin.DELETE("resources/:id", resources.DeleteResource)
	}
	return publicEndpoints
}
