package zlibstream

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
)

const DefaultLevel = zlib.BestCompression

type option struct {
	level  int
	logger *zap.Logger
}

func defaultOption() *option {
	return &option{
		level:  DefaultLevel,
		logger: zap.NewNop(),
	}
}

func (o *option) validate() error {
	if o.level < zlib.HuffmanOnly || o.level > zlib.BestCompression {
		return fmt.Errorf("invalid `level`; expected: %d <= level <= %d, given: %d", zlib.HuffmanOnly, zlib.BestCompression, o.level)
	}

	if o.logger == nil {
		return errors.New("`logger` is required")
	}

	return nil
}

type OptionFunc func(*option) error

// WithLevel sets the compression level of a DeflateWriter. It is ignored by
// InflateReader.
func WithLevel(level int) OptionFunc {
	return func(o *option) error {
		o.level = level
		return nil
	}
}

// WithLogger sets the logger engine lifecycle events are reported to.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		o.logger = logger
		return nil
	}
}

func applyOptions(opts []OptionFunc) (*option, error) {
	options := defaultOption()
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
