package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsTotals(t *testing.T) {
	s := &Stats{}
	s.Record("send", 10*time.Millisecond, nil)
	s.Record("send", 30*time.Millisecond, errors.New("boom"))
	s.Record("unread", 20*time.Millisecond, nil)

	total, failed, avg := s.totals()
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), failed)
	assert.Equal(t, 20*time.Millisecond, avg)
	assert.Equal(t, int64(2), s.ops["send"].total)

	s.PrintFinal()
}

func TestStatsEmpty(t *testing.T) {
	total, failed, avg := (&Stats{}).totals()
	assert.Zero(t, total)
	assert.Zero(t, failed)
	assert.Zero(t, avg)
}
