package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"empowerpwd/db"
	"empowerpwd/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	orm, err := db.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(orm))
	t.Cleanup(func() { _ = db.Close(orm) })
	return orm
}

func createUser(t *testing.T, orm *gorm.DB, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Email:     strings.ToLower(gofakeit.Email()),
		Password:  "not-a-real-hash",
		Role:      role,
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}
	if role == models.RoleEmployer {
		user.CompanyName = gofakeit.Company()
	}
	require.NoError(t, orm.Create(&user).Error)
	return user
}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.MessageEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) For(userID int64) []models.MessageEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.MessageEvent
	for _, e := range p.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// memoryCache is an in-process SummaryCache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[int64]models.UserSummary
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[int64]models.UserSummary{}}
}

func (c *memoryCache) GetSummaries(_ context.Context, ids []int64) (map[int64]models.UserSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	out := map[int64]models.UserSummary{}
	for _, id := range ids {
		if s, ok := c.entries[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (c *memoryCache) SetSummaries(_ context.Context, summaries []models.UserSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range summaries {
		c.entries[s.ID] = s
	}
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
