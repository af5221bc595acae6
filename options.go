package kdtree

// DefaultCapacity is the leaf capacity used by New.
const DefaultCapacity = 16

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures tree construction.
type Option func(*options)

// WithLogger configures structured logging for structural events
// (splits, snapshots, batch queries).
//
// If nil is passed, logging is disabled.
//
// Example:
//
//	tree := kdtree.New[float64, string](3, kdtree.WithLogger(kdtree.NewTextLogger(slog.LevelDebug)))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection (the default); no timing is taken then.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kdtree.BasicMetricsCollector{}
//	tree := kdtree.New[float64, int](2, kdtree.WithMetricsCollector(metrics))
//	// ... use tree ...
//	stats := metrics.Stats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger: NoopLogger(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
