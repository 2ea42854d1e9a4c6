package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
	"github.com/spacemeshos/smutil"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/bitio/shared"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultLevel          = zlib.BestCompression
	DefaultLogLevel       = "info"
	DefaultChunkSize      = shared.ZlibBufferSize

	MinChunkSize = 1
	MaxChunkSize = 1 << 26
)

var (
	DefaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), "bitio")
	DefaultConfigFile = filepath.Join(DefaultHomeDir, DefaultConfigFileName)
	DefaultBitWidths  = []uint{8}
)

type Config struct {
	ConfigFile string `mapstructure:"config"`
	LogLevel   string `mapstructure:"log-level"`

	// Level is the zlib compression level used when deflating.
	Level int `mapstructure:"level"`

	// ChunkSize is the size of the byte blocks copied between readers and writers.
	ChunkSize int `mapstructure:"chunk-size"`

	// BitWidths are the widths of the fields dumped, applied cyclically.
	BitWidths []uint `mapstructure:"widths"`

	// MetricsFile, when set, receives the command's counters in the
	// prometheus text format.
	MetricsFile string `mapstructure:"metrics-file"`
}

func DefaultConfig() *Config {
	return &Config{
		ConfigFile: DefaultConfigFile,
		LogLevel:   DefaultLogLevel,
		Level:      DefaultLevel,
		ChunkSize:  DefaultChunkSize,
		BitWidths:  append([]uint(nil), DefaultBitWidths...),
	}
}

func (cfg *Config) Validate() error {
	if cfg.Level < zlib.HuffmanOnly || cfg.Level > zlib.BestCompression {
		return fmt.Errorf("invalid `Level`; expected: %d <= level <= %d, given: %d", zlib.HuffmanOnly, zlib.BestCompression, cfg.Level)
	}

	if _, err := cfg.ZapLevel(); err != nil {
		return fmt.Errorf("invalid `LogLevel`: %w", err)
	}

	if cfg.ChunkSize < MinChunkSize || cfg.ChunkSize > MaxChunkSize {
		return fmt.Errorf("invalid `ChunkSize`; expected: %d <= size <= %d, given: %d", MinChunkSize, MaxChunkSize, cfg.ChunkSize)
	}

	if len(cfg.BitWidths) == 0 {
		return errors.New("invalid `BitWidths`; expected: at least one width")
	}
	for i, w := range cfg.BitWidths {
		if w < 1 || w > shared.MaxBitWidth {
			return fmt.Errorf("invalid `BitWidths[%d]`; expected: 1 <= width <= %d, given: %d", i, shared.MaxBitWidth, w)
		}
	}

	return nil
}

func (cfg *Config) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(cfg.LogLevel)
}
