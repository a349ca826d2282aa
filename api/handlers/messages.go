package handlers

import (
	"strconv"
	"time"

	"empowerpwd/api/middleware"
	"empowerpwd/api/response"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

// MessageHandlers serve the direct messaging API for the authenticated
// user only.
type MessageHandlers struct {
	messages *services.MessageService
}

func NewMessageHandlers(messages *services.MessageService) *MessageHandlers {
	return &MessageHandlers{messages: messages}
}

type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId"`
	Message    string `json:"message"`
}

// SendMessageHandler - POST /messages/send
func (h *MessageHandlers) SendMessageHandler(c *gin.Context) {
	started := time.Now()
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	msg, err := h.messages.SendMessage(c.Request.Context(), middleware.CurrentUserID(c), req.ReceiverID, req.Message)
	middleware.RecordMessageOperation("send", started, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// ConversationHandler - GET /messages/conversation/:userId
func (h *MessageHandlers) ConversationHandler(c *gin.Context) {
	started := time.Now()
	otherUserID, err := pathID(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}

	messages, err := h.messages.GetMessagesBetween(c.Request.Context(), middleware.CurrentUserID(c), otherUserID)
	middleware.RecordMessageOperation("conversation", started, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, messages)
}

// ConversationsHandler - GET /messages/conversations
func (h *MessageHandlers) ConversationsHandler(c *gin.Context) {
	started := time.Now()
	inbox, err := h.messages.Conversations(c.Request.Context(), middleware.CurrentUserID(c))
	middleware.RecordMessageOperation("inbox", started, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, inbox)
}

// MarkReadHandler - PUT /messages/read/:senderId
func (h *MessageHandlers) MarkReadHandler(c *gin.Context) {
	started := time.Now()
	senderID, err := pathID(c, "senderId")
	if err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.messages.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), senderID)
	middleware.RecordMessageOperation("mark_read", started, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"updated": updated})
}

// UnreadCountHandler - GET /messages/unread
func (h *MessageHandlers) UnreadCountHandler(c *gin.Context) {
	started := time.Now()
	count, err := h.messages.UnreadTotal(c.Request.Context(), middleware.CurrentUserID(c))
	middleware.RecordMessageOperation("unread_total", started, err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"count": count})
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidParam(name)
	}
	return id, nil
}
