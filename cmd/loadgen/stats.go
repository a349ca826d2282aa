package main

import (
	"context"
	"sort"
	"sync"
	"time"

	"empowerpwd/logger"
)

type opStats struct {
	total    int64
	failed   int64
	duration time.Duration
}

type Stats struct {
	mu  sync.Mutex
	ops map[string]*opStats
}

func (s *Stats) Record(op string, took time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops == nil {
		s.ops = make(map[string]*opStats)
	}
	st, ok := s.ops[op]
	if !ok {
		st = &opStats{}
		s.ops[op] = st
	}
	st.total++
	st.duration += took
	if err != nil {
		st.failed++
		logger.Log.Debugf("%s failed: %v", op, err)
	}
}

func (s *Stats) totals() (total, failed int64, avg time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum time.Duration
	for _, st := range s.ops {
		total += st.total
		failed += st.failed
		sum += st.duration
	}
	if total > 0 {
		avg = sum / time.Duration(total)
	}
	return total, failed, avg
}

func (s *Stats) Report(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			total, failed, avg := s.totals()
			logger.Log.Infof("[STATS] Total: %d | Success: %d | Failed: %d | Avg Latency: %s",
				total, total-failed, failed, avg)
		}
	}
}

func (s *Stats) PrintFinal() {
	total, failed, avg := s.totals()
	var successRate float64
	if total > 0 {
		successRate = float64(total-failed) / float64(total) * 100
	}

	logger.Log.Info("========== FINAL STATISTICS ==========")
	logger.Log.Infof("Total Requests:     %d", total)
	logger.Log.Infof("Failed:             %d", failed)
	logger.Log.Infof("Success Rate:       %.2f%%", successRate)
	logger.Log.Infof("Average Latency:    %s", avg)

	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.ops))
	for name := range s.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := s.ops[name]
		logger.Log.Infof("  %-14s %6d requests, %d failed, avg %s", name, st.total, st.failed, st.duration/time.Duration(st.total))
	}
	logger.Log.Info("======================================")
}
