package concat

import "go.uber.org/zap"

// Option configures an Engine or a Concat.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	validate bool
}

// WithLogger sets the logger used for lifecycle and debug events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithValidation enables debug assertions on every outgoing update.
// Violations are reported through zap's DPanic, which panics when the logger
// is in development mode.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
