package models

import (
	"time"
)

// MaxMessageLength is the body limit in characters.
const MaxMessageLength = 1000

// Message is a direct message between two users. Everything except IsRead
// is immutable after creation.
type Message struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   int64     `gorm:"column:sender_id;not null;index:idx_messages_pair,priority:1" json:"senderId"`
	ReceiverID int64     `gorm:"column:receiver_id;not null;index:idx_messages_pair,priority:2;index:idx_messages_unread,priority:1" json:"receiverId"`
	Body       string    `gorm:"column:body;type:text;not null" json:"message"`
	CreatedAt  time.Time `gorm:"not null;index:idx_messages_created_at,sort:desc" json:"createdAt"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_messages_unread,priority:2" json:"isRead"`
}

func (Message) TableName() string {
	return "messages"
}

// PartnerOf returns the other participant relative to userID.
func (m Message) PartnerOf(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Conversation is the derived inbox entry for one partner.
type Conversation struct {
	Partner     UserSummary `json:"partner"`
	LastMessage Message     `json:"lastMessage"`
	UnreadCount int64       `json:"unreadCount"`
}

// MessageEvent is pushed to connected clients.
type MessageEvent struct {
	Event string `json:"event"`
	// Recipient of the push, not of the message.
	UserID    int64     `json:"userId"`
	Message   *Message  `json:"message,omitempty"`
	ReaderID  int64     `json:"readerId,omitempty"`
	PartnerID int64     `json:"partnerId,omitempty"`
	Count     int64     `json:"count,omitempty"`
	At        time.Time `json:"at"`
}

const (
	EventMessageSent = "message.sent"
	EventMessageRead = "message.read"
)
