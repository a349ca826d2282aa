package db

import (
	"context"
	"fmt"
	"time"

	"empowerpwd/config"
	"empowerpwd/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

const slowQueryThreshold = 200 * time.Millisecond

var ORM *gorm.DB

func dsnFromConfig(dbConf config.DBConfig) string {
	port := dbConf.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, port, dbConf.User, dbConf.Password, dbConf.DBName,
	)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
			NoLowerCase:   false,
		},
		Logger:         newGormLogger(),
		TranslateError: true,
	}
}

// newGormLogger writes gorm's warnings, slow queries and errors through the
// process logger. Missing records are normal lookups, not errors.
func newGormLogger() gormlogger.Interface {
	stdLog, err := zap.NewStdLogAt(logger.Log.Desugar(), zapcore.WarnLevel)
	if err != nil {
		stdLog = zap.NewStdLog(logger.Log.Desugar())
	}
	return gormlogger.New(stdLog, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// ConnectDB opens the database described by conf, registers read replicas,
// runs migrations and stores the handle in ORM.
func ConnectDB(conf *config.ConfigSchema) (*gorm.DB, error) {
	if ORM != nil {
		logger.Log.Info("ORM is already initialized")
		return ORM, nil
	}
	if conf == nil {
		return nil, fmt.Errorf("AppConfig is not loaded")
	}

	var (
		orm *gorm.DB
		err error
	)
	switch conf.Databases.Driver {
	case "sqlite":
		orm, err = ConnectSQLite(conf.Databases.SQLitePath)
	default:
		orm, err = connectPostgres(conf)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(orm); err != nil {
		return nil, err
	}
	ORM = orm
	return orm, nil
}

func connectPostgres(conf *config.ConfigSchema) (*gorm.DB, error) {
	masterDSN := dsnFromConfig(conf.Databases.Master)
	replicaDSNs := make([]gorm.Dialector, 0, len(conf.Databases.Replicas))
	for _, r := range conf.Databases.Replicas {
		replicaDSNs = append(replicaDSNs, postgres.Open(dsnFromConfig(r)))
	}

	orm, err := gorm.Open(postgres.Open(masterDSN), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open master: %w", err)
	}

	if len(replicaDSNs) > 0 {
		err = orm.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicaDSNs,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register replicas: %w", err)
		}
		logger.Log.Infof("Registered %d read replicas", len(replicaDSNs))
	}
	return orm, nil
}

// ConnectSQLite opens a SQLite database. A single connection is kept so
// in-memory databases are shared by every query.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	orm, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return orm, nil
}

// ReadOnly routes the query to a replica when replicas are registered.
func ReadOnly(ctx context.Context, orm *gorm.DB) *gorm.DB {
	return orm.WithContext(ctx).Clauses(dbresolver.Read)
}

// Write always routes the query to the master.
func Write(ctx context.Context, orm *gorm.DB) *gorm.DB {
	return orm.WithContext(ctx).Clauses(dbresolver.Write)
}

func Close(orm *gorm.DB) error {
	if orm == nil {
		return nil
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
