package routes

import (
	"empowerpwd/api/handlers"
	"empowerpwd/api/middleware"

	"github.com/gin-gonic/gin"
)

func MessageApi(router *gin.Engine, deps Deps) *gin.RouterGroup {
	messages := handlers.NewMessageHandlers(deps.Messages)
	ws := handlers.NewWSHandlers(deps.WS)

	messageEndpoints := router.Group("/api/v1/messages/", middleware.AuthMiddleware(deps.Tokens))
	{
		messageEndpoints.POST("send", messages.SendMessageHandler)
		messageEndpoints.GET("conversation/:userId", messages.ConversationHandler)
		messageEndpoints.GET("conversations", messages.ConversationsHandler)
		messageEndpoints.PUT("read/:senderId", messages.MarkReadHandler)
		messageEndpoints.GET("unread", messages.UnreadCountHandler)
	}
	router.GET("/api/v1/messages/ws", middleware.WSAuthMiddleware(deps.Tokens), ws.MessagesWSHandler)
	return messageEndpoints
}
