package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/config"
)

var (
	Version string
	Commit  string

	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bitio",
	Short: "Inspect and convert bit-granular binary streams",
	Long: `bitio moves data between files and zlib streams and dumps bit fields
of binary files. For more information take a look at the subcommands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		if err := writeMetrics(); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.String("config", defaults.ConfigFile, "Path to configuration file")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error, dpanic, panic, fatal)")
	flags.Int("level", defaults.Level, "zlib compression level (-2 huffman only, 0 none, 1 fastest .. 9 best)")
	flags.Int("chunk-size", defaults.ChunkSize, "Size of the byte blocks copied between streams")
	flags.String("metrics-file", defaults.MetricsFile, "Write prometheus metrics to this file when done")
}

// loadConfig layers, from lowest to highest priority: the defaults, the
// configuration file and the flags given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	vip := viper.New()
	if err := vip.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	vip.SetConfigFile(vip.GetString("config"))
	if err := vip.ReadInConfig(); err != nil {
		// Only a missing default configuration file is fine.
		if cmd.Flags().Changed("config") || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	loaded := config.DefaultConfig()
	if err := vip.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.ZapLevel()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
