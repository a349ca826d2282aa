package db

import (
	"context"
	"testing"

	"empowerpwd/config"
	"empowerpwd/logger"
	"empowerpwd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestDSNFromConfig(t *testing.T) {
	dsn := dsnFromConfig(config.DBConfig{Host: "h", User: "u", Password: "p", DBName: "d"})
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable TimeZone=UTC", dsn)
}

func TestConnectSQLiteMigrates(t *testing.T) {
	orm, err := ConnectSQLite("file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(orm) })

	require.NoError(t, Migrate(orm))

	m := orm.Migrator()
	assert.True(t, m.HasTable(&models.Message{}))
	assert.True(t, m.HasTable(&models.User{}))
	assert.True(t, m.HasTable(&models.Job{}))
	assert.True(t, m.HasTable(&models.Application{}))
	assert.True(t, m.HasTable(&models.Resource{}))
	assert.True(t, m.HasIndex(&models.Application{}, "idx_applications_job_applicant"))
	assert.True(t, m.HasIndex(&models.Message{}, "idx_messages_pair"))
	assert.True(t, m.HasIndex(&models.Message{}, "idx_messages_created_at"))
	assert.True(t, m.HasIndex(&models.Message{}, "idx_messages_unread"))

	ctx := context.Background()
	require.NoError(t, Write(ctx, orm).Create(&models.User{Email: "a@b.c", Password: "x", Role: models.RoleJobSeeker}).Error)
	var count int64
	require.NoError(t, ReadOnly(ctx, orm).Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConnectDBRequiresConfig(t *testing.T) {
	_, err := ConnectDB(nil)
	assert.Error(t, err)
}

func TestGormLogsThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.Log
	logger.Log = zap.New(core).Sugar()
	t.Cleanup(func() { logger.Log = previous })

	orm, err := ConnectSQLite("file:gorm_logger_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(orm) })
	require.NoError(t, Migrate(orm))
	logs.TakeAll()

	err = orm.First(&models.User{}, 999).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "missing records are not logged")

	assert.Error(t, orm.Exec("SELECT * FROM missing_table").Error)
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "missing_table")
}
