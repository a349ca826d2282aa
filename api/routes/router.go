package routes

import (
	"net/http"

	"empowerpwd/api/middleware"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "empowerpwd"

type Deps struct {
	Tokens       *services.TokenService
	Users        *services.UserService
	Messages     *services.MessageService
	Jobs         *services.JobService
	Applications *services.ApplicationService
	Resources    *services.ResourceService
	WS           *services.WSConnManager
}

// NewRouter wires middleware and every API group.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.PrometheusMiddleware(serviceName))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	PublicApi(router, deps)
	MessageApi(router, deps)
	return router
}
