package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"empowerpwd/logger"

	"github.com/brianvoe/gofakeit/v7"
)

type Config struct {
	BaseURL        string
	Users          int
	Workers        int
	Duration       time.Duration
	RequestsPerSec int
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.BaseURL, "url", "http://localhost:8080", "API base URL")
	flag.IntVar(&config.Users, "users", 20, "Number of accounts to register")
	flag.IntVar(&config.Workers, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&config.Duration, "duration", time.Minute, "Test duration (0 for infinite)")
	flag.IntVar(&config.RequestsPerSec, "rps", 100, "Requests per second target")

	flag.Parse()
	return config
}

func main() {
	config := parseFlags()
	if err := logger.Init("info", "console"); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if config.Users < 2 || config.Workers < 1 || config.RequestsPerSec < 1 {
		logger.Log.Fatal("need at least 2 users, 1 worker and 1 rps")
	}
	logger.Log.Infof("Starting load generator with config: %+v", config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Duration)
		defer cancel()
	}

	client := NewClient(config.BaseURL)
	sessions, err := registerUsers(ctx, client, config.Users)
	if err != nil {
		logger.Log.Fatalf("Failed to prepare users: %v", err)
	}
	logger.Log.Infof("Registered %d users", len(sessions))

	stats := &Stats{}
	go stats.Report(ctx, 5*time.Second)

	requestsPerWorker := config.RequestsPerSec / config.Workers
	if requestsPerWorker == 0 {
		requestsPerWorker = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, client, sessions, requestsPerWorker, stats)
		}(i)
	}
	wg.Wait()
	stats.PrintFinal()
}

func registerUsers(ctx context.Context, client *Client, n int) ([]Session, error) {
	sessions := make([]Session, 0, n)
	for i := 0; i < n; i++ {
		role := "jobseeker"
		if i%2 == 1 {
			role = "employer"
		}
		s, err := client.SignUp(ctx, gofakeit.Email(), gofakeit.Password(true, true, true, false, false, 12), role)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func worker(ctx context.Context, id int, client *Client, sessions []Session, requestsPerSec int, stats *Stats) {
	ticker := time.NewTicker(time.Second / time.Duration(requestsPerSec))
	defer ticker.Stop()

	operations := []string{"send", "send", "conversations", "conversation", "mark_read", "unread"}
	sent := 0
	for {
		select {
		case <-ctx.Done():
			logger.Log.Infof("Worker %d stopping, sent %d messages", id, sent)
			return
		case <-ticker.C:
			from := sessions[gofakeit.IntN(len(sessions))]
			to := sessions[gofakeit.IntN(len(sessions))]
			for to.UserID == from.UserID {
				to = sessions[gofakeit.IntN(len(sessions))]
			}

			op := operations[gofakeit.IntN(len(operations))]
			start := time.Now()
			var err error
			switch op {
			case "send":
				err = client.Send(ctx, from, to.UserID, gofakeit.Sentence(12))
				if err == nil {
					sent++
				}
			case "conversations":
				err = client.Conversations(ctx, from)
			case "conversation":
				err = client.Conversation(ctx, from, to.UserID)
			case "mark_read":
				err = client.MarkRead(ctx, from, to.UserID)
			case "unread":
				err = client.Unread(ctx, from)
			}
			if ctx.Err() != nil {
				return
			}
			stats.Record(op, time.Since(start), err)
		}
	}
}
