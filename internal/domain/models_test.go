package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheEntryExpired(t *testing.T) {
	added := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		ttl  uint64
		want bool
	}{
		{"fresh", 30 * time.Second, 60, false},
		{"exactly at ttl", 60 * time.Second, 60, false},
		{"just past ttl", 60*time.Second + time.Millisecond, 60, true},
		{"well past ttl", time.Hour, 60, true},
		{"zero ttl", time.Second, 0, true},
		{"clock behind added", -time.Hour, 0, false},
		{"ttl beyond duration range", 400 * 24 * time.Hour, 9999999999, false},
		{"max ttl", time.Hour, ^uint64(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := CacheEntry{AddedAt: added, TTLSeconds: tt.ttl}
			assert.Equal(t, tt.want, e.Expired(added.Add(tt.age)))
		})
	}
}
