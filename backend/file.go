package backend

import (
	"io"
)

// FileReader reads directly from a handle, usually an *os.File. There is no
// internal buffering: every Read is one call on the handle.
type FileReader struct {
	handle io.Reader
}

// A compile time check to ensure that FileReader fully implements the Reader interface.
var _ Reader = (*FileReader)(nil)

func NewFileReader(handle io.Reader) *FileReader {
	return &FileReader{handle: handle}
}

func (r *FileReader) Read(p []byte) (int, error) {
	return r.handle.Read(p)
}

// FileWriter writes directly to a handle. Finish does not close the handle;
// its lifetime belongs to the caller.
type FileWriter struct {
	handle io.Writer
}

// A compile time check to ensure that FileWriter fully implements the Writer interface.
var _ Writer = (*FileWriter)(nil)

func NewFileWriter(handle io.Writer) *FileWriter {
	return &FileWriter{handle: handle}
}

func (w *FileWriter) Write(p []byte) (int, error) {
	return w.handle.Write(p)
}

func (w *FileWriter) Finish() error {
	return nil
}
