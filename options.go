package treesearch

import "log/slog"

type options struct {
	logger    *Logger
	metrics   *Metrics
	tracer    Tracer
	broadcast any // BoundBroadcaster[B]; asserted at search start
}

// Option configures ambient concerns of a single search call (logging,
// metrics, tracing). Algorithmic knobs live in Params.
type Option func(*options)

// WithLogger configures structured logging for the search.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetrics configures a metrics sink for the search. The same instance
// may be shared across searches; counters accumulate.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer configures a spawn-trace sink.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithBoundBroadcaster installs a bound-propagation backend. The default
// single-process backend collapses to the registry's local atomic; a
// distributed backend can fan improvements out to remote registries.
// The broadcaster must be a BoundBroadcaster with the search's bound type.
func WithBoundBroadcaster[B any](b BoundBroadcaster[B]) Option {
	return func(o *options) {
		o.broadcast = b
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:  NoopLogger(),
		metrics: &Metrics{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
