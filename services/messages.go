package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"empowerpwd/db"
	"empowerpwd/logger"
	"empowerpwd/models"

	"gorm.io/gorm"
)

// PartnerDirectory is the part of the user store the messaging code needs.
type PartnerDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]models.UserSummary, error)
}

// EventPublisher delivers message events to connected clients.
type EventPublisher interface {
	Publish(ctx context.Context, event models.MessageEvent) error
}

// MessageService stores direct messages and derives inboxes from them.
type MessageService struct {
	orm    *gorm.DB
	users  PartnerDirectory
	events EventPublisher
	now    func() time.Time
}

func NewMessageService(orm *gorm.DB, users PartnerDirectory, events EventPublisher) *MessageService {
	return &MessageService{
		orm:    orm,
		users:  users,
		events: events,
		now:    time.Now,
	}
}

// SendMessage validates and appends a new unread message.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID int64, body string) (*models.Message, error) {
	if receiverID <= 0 {
		return nil, validationErr("receiverId is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, validationErr("message is required")
	}
	if n := utf8.RuneCountInString(body); n > models.MaxMessageLength {
		return nil, validationErr("message is %d characters, limit is %d", n, models.MaxMessageLength)
	}
	if senderID == receiverID {
		return nil, validationErr("cannot send a message to yourself")
	}

	exists, err := s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: receiver %d", ErrNotFound, receiverID)
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  s.now().UTC(),
		IsRead:     false,
	}
	if err := db.Write(ctx, s.orm).Create(msg).Error; err != nil {
		return nil, storeErr("create message", err)
	}

	s.publish(ctx, models.MessageEvent{Event: models.EventMessageSent, UserID: receiverID, Message: msg, PartnerID: senderID, At: msg.CreatedAt})
	s.publish(ctx, models.MessageEvent{Event: models.EventMessageSent, UserID: senderID, Message: msg, PartnerID: receiverID, At: msg.CreatedAt})
	return msg, nil
}

// GetMessagesBetween returns the conversation of a and b oldest first.
func (s *MessageService) GetMessagesBetween(ctx context.Context, a, b int64) ([]models.Message, error) {
	if b <= 0 {
		return nil, validationErr("userId is required")
	}
	messages := []models.Message{}
	err := db.ReadOnly(ctx, s.orm).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, storeErr("list conversation", err)
	}
	return messages, nil
}

// Conversations builds the inbox of userID: one entry per partner with the
// newest message and the number of unread messages from that partner,
// most recent conversation first.
func (s *MessageService) Conversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	groups, order, err := s.scanInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return []models.Conversation{}, nil
	}

	partners, err := s.users.Summaries(ctx, order)
	if err != nil {
		return nil, err
	}

	// order follows the scan, so it is already newest conversation first
	inbox := make([]models.Conversation, 0, len(order))
	for _, partnerID := range order {
		partner, ok := partners[partnerID]
		if !ok {
			logger.Log.Warnf("Skipping conversation of user %d with missing partner %d", userID, partnerID)
			continue
		}
		conv := groups[partnerID]
		conv.Partner = partner
		inbox = append(inbox, *conv)
	}
	return inbox, nil
}

// scanInbox walks every message involving userID newest first. The first
// message seen for a partner is the last one of that conversation.
func (s *MessageService) scanInbox(ctx context.Context, userID int64) (map[int64]*models.Conversation, []int64, error) {
	rows, err := db.ReadOnly(ctx, s.orm).
		Model(&models.Message{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Rows()
	if err != nil {
		return nil, nil, storeErr("scan inbox", err)
	}
	defer rows.Close()

	groups := make(map[int64]*models.Conversation)
	var order []int64
	for rows.Next() {
		var m models.Message
		if err := s.orm.ScanRows(rows, &m); err != nil {
			return nil, nil, storeErr("scan inbox", err)
		}
		partnerID := m.PartnerOf(userID)
		conv, ok := groups[partnerID]
		if !ok {
			conv = &models.Conversation{LastMessage: m}
			groups[partnerID] = conv
			order = append(order, partnerID)
		}
		if m.ReceiverID == userID && !m.IsRead {
			conv.UnreadCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storeErr("scan inbox", err)
	}
	return groups, order, nil
}

// UnreadTotal counts unread messages addressed to userID from anybody.
func (s *MessageService) UnreadTotal(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := db.ReadOnly(ctx, s.orm).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count unread", err)
	}
	return count, nil
}

// MarkRead marks everything otherUserID sent to currentUserID as read and
// returns how many messages changed. Calling it again changes nothing.
func (s *MessageService) MarkRead(ctx context.Context, currentUserID, otherUserID int64) (int64, error) {
	if otherUserID <= 0 {
		return 0, validationErr("senderId is required")
	}
	res := db.Write(ctx, s.orm).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherUserID, currentUserID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, storeErr("mark read", res.Error)
	}

	if res.RowsAffected > 0 {
		at := s.now().UTC()
		s.publish(ctx, models.MessageEvent{Event: models.EventMessageRead, UserID: otherUserID, ReaderID: currentUserID, PartnerID: currentUserID, Count: res.RowsAffected, At: at})
		s.publish(ctx, models.MessageEvent{Event: models.EventMessageRead, UserID: currentUserID, ReaderID: currentUserID, PartnerID: otherUserID, Count: res.RowsAffected, At: at})
	}
	return res.RowsAffected, nil
}

// publish never fails the caller: the message is already stored and
// clients still catch up by polling.
func (s *MessageService) publish(ctx context.Context, event models.MessageEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Log.Warnf("Failed to publish %s event for user %d: %v", event.Event, event.UserID, err)
	}
}
