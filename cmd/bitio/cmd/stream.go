package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/multierr"

	"github.com/spacemeshos/bitio"
)

const stdio = "-"

func openInput(name string) (*os.File, error) {
	if name == stdio {
		return os.Stdin, nil
	}
	return os.Open(name)
}

// writeOutput runs write against a temporary file next to name and moves it
// into place once write succeeded, so name never holds a partial stream.
func writeOutput(name string, write func(io.Writer) error) error {
	if name == stdio {
		return write(os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), ".bitio-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return atomic.ReplaceFile(tmp.Name(), name)
}

// copyBlocks copies dst from src in blocks of at most chunkSize bytes until
// src reports the end of data.
func copyBlocks(dst *bitio.Writer, src *bitio.Reader, chunkSize int) (uint64, error) {
	var total uint64
	for {
		block, err := src.ReadBlock(chunkSize)
		if len(block) > 0 {
			if _, err := dst.Write(block); err != nil {
				return total, err
			}
			total += uint64(len(block))
		}

		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n)
	return n, err
}
