package cmd

import (
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio"
)

// inflateCmd represents the inflate command.
var inflateCmd = &cobra.Command{
	Use:   "inflate <input> <output>",
	Short: "Decompress a zlib stream into a file",
	Long: `inflate decompresses the zlib stream read from input into output.
Use "-" for stdin or stdout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer in.Close()

		return writeOutput(args[1], func(out io.Writer) error {
			counter := &countingReader{r: in}
			upstream, err := bitio.NewFileReader(counter, bitio.WithLogger(logger))
			if err != nil {
				return err
			}
			src, err := bitio.NewInflateReader(upstream, bitio.WithLogger(logger))
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := bitio.NewFileWriter(out, bitio.WithLogger(logger))
			if err != nil {
				return err
			}

			total, err := copyBlocks(dst, src, cfg.ChunkSize)
			if err != nil {
				return fmt.Errorf("failed to inflate %v: %w", args[0], err)
			}
			if err := dst.Finish(); err != nil {
				return err
			}

			bytesRead.WithLabelValues("inflate").Add(float64(counter.n))
			bytesWritten.WithLabelValues("inflate").Add(float64(total))
			logger.Info("inflated",
				zap.String("input", args[0]),
				zap.String("output", args[1]),
				zap.String("compressed_size", bytefmt.ByteSize(counter.n)),
				zap.String("size", bytefmt.ByteSize(total)),
			)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(inflateCmd)
}
