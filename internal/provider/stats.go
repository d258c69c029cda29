package provider

import (
	"context"
	"sync/atomic"
)

// RequestStats counts provider traffic caused by one API request.
// The zero value is ready to use and safe for concurrent fan-out.
type RequestStats struct {
	upstream atomic.Int64
	cached   atomic.Int64
	failed   atomic.Int64
}

// StatsSnapshot is the JSON form returned to clients.
type StatsSnapshot struct {
	Upstream int64 `json:"upstream"`
	Cached   int64 `json:"cached"`
	Failed   int64 `json:"failed"`
}

func (s *RequestStats) addUpstream() {
	if s != nil {
		s.upstream.Add(1)
	}
}

func (s *RequestStats) addCached() {
	if s != nil {
		s.cached.Add(1)
	}
}

func (s *RequestStats) addFailed() {
	if s != nil {
		s.failed.Add(1)
	}
}

// Snapshot reads the current counters. A nil receiver yields zeros.
func (s *RequestStats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		Upstream: s.upstream.Load(),
		Cached:   s.cached.Load(),
		Failed:   s.failed.Load(),
	}
}

type statsKey struct{}

// WithStats attaches a fresh RequestStats to ctx.
func WithStats(ctx context.Context) (context.Context, *RequestStats) {
	s := &RequestStats{}
	return context.WithValue(ctx, statsKey{}, s), s
}

// StatsFrom returns the stats attached to ctx, or nil.
func StatsFrom(ctx context.Context) *RequestStats {
	s, _ := ctx.Value(statsKey{}).(*RequestStats)
	return s
}
