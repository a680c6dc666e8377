package fontindex

import "log/slog"

// Option configures Build.
type Option func(*options)

type options struct {
	main        []string
	fallback    []string
	skipInvalid bool
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{logger: slog.New(slog.DiscardHandler)}
}

// WithMainFonts lists the preferred families, highest rank first.
// Every family must exist in the font tree.
func WithMainFonts(families ...string) Option {
	return func(o *options) {
		o.main = append(o.main, families...)
	}
}

// WithFallbackFonts lists families consulted after the main fonts.
func WithFallbackFonts(families ...string) Option {
	return func(o *options) {
		o.fallback = append(o.fallback, families...)
	}
}

// WithSkipInvalid makes Build log and skip corrupt or variable fonts
// instead of failing.
func WithSkipInvalid(skip bool) Option {
	return func(o *options) {
		o.skipInvalid = skip
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
