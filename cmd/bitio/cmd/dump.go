package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio"
)

var (
	dumpInflate bool
	dumpLimit   int
)

// dumpCmd represents the dump command.
var dumpCmd = &cobra.Command{
	Use:   "dump <input>",
	Short: "Print the bit fields of a file",
	Long: `dump reads input as a sequence of unsigned bit fields, most significant bit
first, and prints them as a table. The widths given with --widths are applied
cyclically until the input or the --limit is exhausted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer in.Close()

		r, err := bitio.NewFileReader(in, bitio.WithLogger(logger))
		if err != nil {
			return err
		}
		if dumpInflate {
			r, err = bitio.NewInflateReader(r, bitio.WithLogger(logger))
			if err != nil {
				return err
			}
			defer r.Close()
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Field", "Bit offset", "Width", "Value", "Hex"})

		var offset uint64
		for i := 0; dumpLimit <= 0 || i < dumpLimit; i++ {
			width := cfg.BitWidths[i%len(cfg.BitWidths)]
			value, err := r.ReadBits(int(width))
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				logger.Warn("input ends inside a field",
					zap.Int("field", i),
					zap.Uint64("bit_offset", offset),
					zap.Uint("width", width),
				)
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read field %d: %w", i, err)
			}

			table.Append([]string{
				strconv.Itoa(i),
				strconv.FormatUint(offset, 10),
				strconv.FormatUint(uint64(width), 10),
				strconv.FormatUint(value, 10),
				fmt.Sprintf("%#x", value),
			})
			offset += uint64(width)
			fieldsDumped.Inc()
		}

		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringSlice("widths", []string{"8"}, "Comma separated field widths in bits, 1 to 64")
	dumpCmd.Flags().BoolVar(&dumpInflate, "inflate", false, "Decompress the input as a zlib stream first")
	dumpCmd.Flags().IntVar(&dumpLimit, "limit", 256, "Maximum number of fields to print, 0 for all")
}
