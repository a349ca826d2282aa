package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"empowerpwd/api/routes"
	"empowerpwd/config"
	"empowerpwd/db"
	"empowerpwd/logger"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	if err := config.LoadConfig(configPath); err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	conf := config.AppConfig

	if err := logger.Init(conf.Logs.Level, conf.Logs.Format); err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	defer logger.Sync()
	if conf.Logs.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orm, err := db.ConnectDB(conf)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer db.Close(orm)

	var summaryCache services.SummaryCache
	if conf.RedisEnabled() {
		redisClient, err := services.NewRedisClient(ctx, conf.Redis)
		if err != nil {
			logger.Log.Warnf("Redis unavailable, user summaries are not cached: %v", err)
		} else {
			defer redisClient.Close()
			summaryCache = services.NewRedisSummaryCache(redisClient, conf.Cache.UserSummaryTTL)
		}
	}

	tokens := services.NewTokenService(conf.Auth.JWTSecret, conf.Auth.TokenTTL)
	users := services.NewUserService(orm, tokens, summaryCache)
	if conf.Auth.AdminEmail != "" && conf.Auth.AdminPassword != "" {
		if err := users.EnsureAdmin(ctx, conf.Auth.AdminEmail, conf.Auth.AdminPassword); err != nil {
			logger.Log.Fatalf("Failed to create admin account: %v", err)
		}
	}

	ws := services.NewWSConnManager()
	var publisher services.EventPublisher = services.NewLocalPublisher(ws)
	if conf.RabbitMQ.URL != "" {
		bus, err := services.NewRabbitBus(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			logger.Log.Warnf("RabbitMQ unavailable, pushing to local connections only: %v", err)
		} else if err := bus.StartConsumer(ctx, conf.RabbitMQ.Queue, ws); err != nil {
			logger.Log.Warnf("RabbitMQ consumer failed, pushing to local connections only: %v", err)
			_ = bus.Close()
		} else {
			defer bus.Close()
			publisher = bus
		}
	}

	router := routes.NewRouter(routes.Deps{
		Tokens:       tokens,
		Users:        users,
		Messages:     services.NewMessageService(orm, users, publisher),
		Jobs:         services.NewJobService(orm),
		Applications: services.NewApplicationService(orm, users),
		Resources:    services.NewResourceService(orm),
		WS:           ws,
	})

	srv := &http.Server{
		Addr:    conf.ListenAddr(),
		Handler: router,
	}
	go func() {
		logger.Log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Backend.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Log.Info("Server exited")
}
