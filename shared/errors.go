package shared

import (
	"errors"
	"fmt"
)

var (
	ErrFinished        = errors.New("writer already finished")
	ErrWidthOutOfRange = errors.New("bit width out of range")
	ErrInvalidLength   = errors.New("invalid buffer length")
)

// EngineError reports a failure of the zlib engine. The stream it belongs to
// cannot be used afterwards; the caller decides whether to abort or propagate.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%v: zlib error: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err, or any error it wraps, is an engine failure.
func IsFatal(err error) bool {
	var engineErr *EngineError
	return errors.As(err, &engineErr)
}
