package kdtree

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see examples/observability).
//
// Collectors are called synchronously on the caller's goroutine and, for
// batch queries, from several goroutines at once.
type MetricsCollector interface {
	// RecordInsert is called after each Add.
	// duration is the total time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordRemove is called after each Remove/RemoveFunc.
	// removed is the number of entries deleted.
	RecordRemove(removed int, duration time.Duration, err error)

	// RecordSearch is called after each eager query (nearest, within,
	// bounding box). op names the query, results is the number returned.
	RecordSearch(op string, results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)              {}
func (NoopMetricsCollector) RecordRemove(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordSearch(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	RemoveCount      atomic.Int64
	RemoveErrors     atomic.Int64
	RemovedEntries   atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed int, _ time.Duration, err error) {
	b.RemoveCount.Add(1)
	b.RemovedEntries.Add(int64(removed))
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ string, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchResults.Add(int64(results))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// MetricsStats is a point-in-time copy of BasicMetricsCollector counters.
type MetricsStats struct {
	InsertCount       int64
	InsertErrors      int64
	AvgInsertDuration time.Duration
	RemoveCount       int64
	RemoveErrors      int64
	RemovedEntries    int64
	SearchCount       int64
	SearchErrors      int64
	SearchResults     int64
	AvgSearchDuration time.Duration
}

// Stats returns the current counters with derived averages.
func (b *BasicMetricsCollector) Stats() MetricsStats {
	s := MetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		RemoveCount:    b.RemoveCount.Load(),
		RemoveErrors:   b.RemoveErrors.Load(),
		RemovedEntries: b.RemovedEntries.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchResults:  b.SearchResults.Load(),
	}
	if s.InsertCount > 0 {
		s.AvgInsertDuration = time.Duration(b.InsertTotalNanos.Load() / s.InsertCount)
	}
	if s.SearchCount > 0 {
		s.AvgSearchDuration = time.Duration(b.SearchTotalNanos.Load() / s.SearchCount)
	}
	return s
}
