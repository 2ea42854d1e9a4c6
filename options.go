package bitio

import (
	"errors"

	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/zlibstream"
)

type option struct {
	logger *zap.Logger
	level  int
}

func (o *option) validate() error {
	if o.logger == nil {
		return errors.New("`logger` is required")
	}
	return nil
}

func (o *option) zlibOptions() []zlibstream.OptionFunc {
	return []zlibstream.OptionFunc{
		zlibstream.WithLogger(o.logger),
		zlibstream.WithLevel(o.level),
	}
}

type OptionFunc func(*option) error

// WithLogger sets the logger for the reader or writer and the engines it owns.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		o.logger = logger
		return nil
	}
}

// WithLevel sets the compression level used by NewDeflateWriter.
func WithLevel(level int) OptionFunc {
	return func(o *option) error {
		o.level = level
		return nil
	}
}

func applyOptions(opts []OptionFunc) (*option, error) {
	options := &option{
		logger: zap.NewNop(),
		level:  zlibstream.DefaultLevel,
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if err := options.validate(); err != nil {
		return nil, err
	}

	return options, nil
}
