package cmd

import (
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio"
)

// deflateCmd represents the deflate command.
var deflateCmd = &cobra.Command{
	Use:   "deflate <input> <output>",
	Short: "Compress a file into a zlib stream",
	Long: `deflate compresses input into a standard zlib stream written to output.
Use "-" for stdin or stdout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer in.Close()

		return writeOutput(args[1], func(out io.Writer) error {
			counter := &countingWriter{w: out}

			src, err := bitio.NewFileReader(in, bitio.WithLogger(logger))
			if err != nil {
				return err
			}
			sink, err := bitio.NewFileWriter(counter, bitio.WithLogger(logger))
			if err != nil {
				return err
			}
			dst, err := bitio.NewDeflateWriter(sink, bitio.WithLogger(logger), bitio.WithLevel(cfg.Level))
			if err != nil {
				return err
			}

			total, err := copyBlocks(dst, src, cfg.ChunkSize)
			if err != nil {
				return fmt.Errorf("failed to deflate %v: %w", args[0], err)
			}
			if err := dst.Finish(); err != nil {
				return fmt.Errorf("failed to finish %v: %w", args[1], err)
			}

			bytesRead.WithLabelValues("deflate").Add(float64(total))
			bytesWritten.WithLabelValues("deflate").Add(float64(counter.n))
			logger.Info("deflated",
				zap.String("input", args[0]),
				zap.String("output", args[1]),
				zap.Int("level", cfg.Level),
				zap.String("size", bytefmt.ByteSize(total)),
				zap.String("compressed_size", bytefmt.ByteSize(counter.n)),
			)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(deflateCmd)
}
