package snapshot

import (
	"go.uber.org/zap"

	"github.com/Neumenon/adt/adt"
)

// Option configures a Writer or Reader.
type Option func(*config)

type config struct {
	log        *zap.Logger
	reg        *adt.Registry
	maxPayload int
	verifyCRC  bool
}

func newConfig(opts []Option) config {
	cfg := config{
		log:        zap.NewNop(),
		maxPayload: MaxPayloadSize,
		verifyCRC:  true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for frame events.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRegistry restores values through reg, so values whose tags are
// registered keep their constructor's shape and union membership.
func WithRegistry(reg *adt.Registry) Option {
	return func(c *config) {
		c.reg = reg
	}
}

// WithMaxPayload sets the maximum compressed payload size a Reader
// accepts and the maximum decompressed size it inflates to.
func WithMaxPayload(max int) Option {
	return func(c *config) {
		if max > 0 {
			c.maxPayload = max
		}
	}
}

// WithCRCVerification turns payload CRC verification on or off. It is
// on by default.
func WithCRCVerification(on bool) Option {
	return func(c *config) {
		c.verifyCRC = on
	}
}
