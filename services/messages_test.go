package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"empowerpwd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type messageFixture struct {
	orm    *gorm.DB
	svc    *MessageService
	events *recordingPublisher
	a, b   models.User
	c      models.User
}

func newMessageFixture(t *testing.T) *messageFixture {
	orm := newTestDB(t)
	events := &recordingPublisher{}
	users := NewUserService(orm, NewTokenService("secret", 0), nil)
	svc := NewMessageService(orm, users, events)
	svc.now = newStepClock().Now

	return &messageFixture{
		orm:    orm,
		svc:    svc,
		events: events,
		a:      createUser(t, orm, models.RoleJobSeeker),
		b:      createUser(t, orm, models.RoleEmployer),
		c:      createUser(t, orm, models.RoleJobSeeker),
	}
}

func (f *messageFixture) send(t *testing.T, from, to models.User, body string) *models.Message {
	t.Helper()
	msg, err := f.svc.SendMessage(context.Background(), from.ID, to.ID, body)
	require.NoError(t, err)
	return msg
}

func bodies(messages []models.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Body
	}
	return out
}

func TestSendMessagePersistsUnread(t *testing.T) {
	f := newMessageFixture(t)

	msg := f.send(t, f.a, f.b, "Hello")
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.IsRead)
	assert.False(t, msg.CreatedAt.IsZero())

	var stored models.Message
	require.NoError(t, f.orm.First(&stored, msg.ID).Error)
	assert.Equal(t, f.a.ID, stored.SenderID)
	assert.Equal(t, f.b.ID, stored.ReceiverID)
	assert.Equal(t, "Hello", stored.Body)
	assert.False(t, stored.IsRead)

	require.Len(t, f.events.For(f.b.ID), 1)
	assert.Equal(t, models.EventMessageSent, f.events.For(f.b.ID)[0].Event)
	assert.Equal(t, f.a.ID, f.events.For(f.b.ID)[0].PartnerID)
	require.Len(t, f.events.For(f.a.ID), 1)
}

func TestSendMessageValidation(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		receiver int64
		body     string
		want     error
	}{
		{"missing receiver", 0, "hi", ErrValidation},
		{"empty body", f.b.ID, "", ErrValidation},
		{"blank body", f.b.ID, "   \n\t", ErrValidation},
		{"too long", f.b.ID, strings.Repeat("a", models.MaxMessageLength+1), ErrValidation},
		{"self", f.a.ID, "hi", ErrValidation},
		{"unknown receiver", 999999, "hi", ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SendMessage(ctx, f.a.ID, tc.receiver, tc.body)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var count int64
	require.NoError(t, f.orm.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count, "nothing is persisted on failure")
	assert.Empty(t, f.events.events)
}

func TestSendMessageAcceptsLimitInCharacters(t *testing.T) {
	f := newMessageFixture(t)
	body := strings.Repeat("é", models.MaxMessageLength)
	msg := f.send(t, f.a, f.b, body)
	assert.Equal(t, body, msg.Body)
}

func TestSendMessageSurvivesPublishFailure(t *testing.T) {
	f := newMessageFixture(t)
	f.events.err = errors.New("broker down")

	msg := f.send(t, f.a, f.b, "still stored")
	assert.NotZero(t, msg.ID)
}

func TestGetMessagesBetweenOrderAndSymmetry(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	f.send(t, f.a, f.b, "one")
	f.send(t, f.b, f.a, "two")
	f.send(t, f.a, f.c, "other conversation")
	f.send(t, f.a, f.b, "three")

	ab, err := f.svc.GetMessagesBetween(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, bodies(ab))

	ba, err := f.svc.GetMessagesBetween(ctx, f.b.ID, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestGetMessagesBetweenSameTimestampKeepsSendOrder(t *testing.T) {
	f := newMessageFixture(t)
	fixed := f.svc.now()
	f.svc.now = func() time.Time { return fixed }

	f.send(t, f.a, f.b, "first")
	f.send(t, f.b, f.a, "second")
	f.send(t, f.a, f.b, "third")

	msgs, err := f.svc.GetMessagesBetween(context.Background(), f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, bodies(msgs))
}

func TestGetMessagesBetweenEmpty(t *testing.T) {
	f := newMessageFixture(t)
	f.send(t, f.a, f.b, "hi")

	msgs, err := f.svc.GetMessagesBetween(context.Background(), f.a.ID, f.c.ID)
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestConversationsScenario(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	f.send(t, f.a, f.b, "Hello")
	f.send(t, f.b, f.a, "Hi back")

	inbox, err := f.svc.Conversations(ctx, f.a.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, f.b.ID, inbox[0].Partner.ID)
	assert.Equal(t, f.b.CompanyName, inbox[0].Partner.Name)
	assert.Equal(t, models.RoleEmployer, inbox[0].Partner.Role)
	assert.Equal(t, "Hi back", inbox[0].LastMessage.Body)
	assert.Equal(t, int64(1), inbox[0].UnreadCount)

	updated, err := f.svc.MarkRead(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	inbox, err = f.svc.Conversations(ctx, f.a.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Zero(t, inbox[0].UnreadCount)

	// B still has A's "Hello" unread
	inboxB, err := f.svc.Conversations(ctx, f.b.ID)
	require.NoError(t, err)
	require.Len(t, inboxB, 1)
	assert.Equal(t, f.a.ID, inboxB[0].Partner.ID)
	assert.Equal(t, int64(1), inboxB[0].UnreadCount)
}

func TestConversationsCompletenessAndRecency(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	d := createUser(t, f.orm, models.RoleJobSeeker)

	f.send(t, f.b, f.a, "b1")
	f.send(t, f.c, f.a, "c1")
	f.send(t, f.a, f.b, "a->b")
	f.send(t, f.c, f.a, "c2")
	f.send(t, f.b, d, "not involving a")

	inbox, err := f.svc.Conversations(ctx, f.a.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2, "one entry per partner")

	assert.Equal(t, f.c.ID, inbox[0].Partner.ID)
	assert.Equal(t, "c2", inbox[0].LastMessage.Body)
	assert.Equal(t, int64(2), inbox[0].UnreadCount)

	assert.Equal(t, f.b.ID, inbox[1].Partner.ID)
	assert.Equal(t, "a->b", inbox[1].LastMessage.Body)
	assert.Equal(t, int64(1), inbox[1].UnreadCount)

	for _, conv := range inbox {
		msgs, err := f.svc.GetMessagesBetween(ctx, f.a.ID, conv.Partner.ID)
		require.NoError(t, err)
		assert.Equal(t, msgs[len(msgs)-1].ID, conv.LastMessage.ID)

		var unread int64
		require.NoError(t, f.orm.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND is_read = ?", conv.Partner.ID, f.a.ID, false).
			Count(&unread).Error)
		assert.Equal(t, unread, conv.UnreadCount)
	}
}

func TestConversationsEmpty(t *testing.T) {
	f := newMessageFixture(t)
	inbox, err := f.svc.Conversations(context.Background(), f.a.ID)
	require.NoError(t, err)
	assert.NotNil(t, inbox)
	assert.Empty(t, inbox)
}

func TestConversationsSkipsMissingPartner(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	f.send(t, f.b, f.a, "from b")
	f.send(t, f.c, f.a, "from c")
	require.NoError(t, f.orm.Delete(&models.User{}, f.c.ID).Error)

	inbox, err := f.svc.Conversations(ctx, f.a.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, f.b.ID, inbox[0].Partner.ID)
}

func TestMarkReadIdempotentAndScoped(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	f.send(t, f.b, f.a, "1")
	f.send(t, f.b, f.a, "2")
	f.send(t, f.a, f.b, "3")
	f.send(t, f.c, f.a, "4")

	updated, err := f.svc.MarkRead(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	receipts := f.events.For(f.b.ID)
	require.NotEmpty(t, receipts)
	last := receipts[len(receipts)-1]
	assert.Equal(t, models.EventMessageRead, last.Event)
	assert.Equal(t, f.a.ID, last.ReaderID)
	assert.Equal(t, int64(2), last.Count)

	eventsBefore := len(f.events.events)
	updated, err = f.svc.MarkRead(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Len(t, f.events.events, eventsBefore, "no receipt for a no-op")

	msgs, err := f.svc.GetMessagesBetween(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)
	for _, m := range msgs {
		if m.SenderID == f.b.ID {
			assert.True(t, m.IsRead)
		} else {
			assert.False(t, m.IsRead, "messages a sent stay unread for b")
		}
	}

	total, err := f.svc.UnreadTotal(ctx, f.a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "c's message is untouched")

	_, err = f.svc.MarkRead(ctx, f.a.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMessageContentIsImmutable(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	sent := f.send(t, f.b, f.a, "keep me")
	_, err := f.svc.MarkRead(ctx, f.a.ID, f.b.ID)
	require.NoError(t, err)

	var stored models.Message
	require.NoError(t, f.orm.First(&stored, sent.ID).Error)
	assert.Equal(t, sent.SenderID, stored.SenderID)
	assert.Equal(t, sent.ReceiverID, stored.ReceiverID)
	assert.Equal(t, sent.Body, stored.Body)
	assert.True(t, sent.CreatedAt.Equal(stored.CreatedAt))
	assert.True(t, stored.IsRead)
}
