package shared

import (
	"errors"
	"fmt"

	"code.cloudfoundry.org/bytefmt"
)

var (
	ErrMalformedFilename      = errors.New("malformed plot filename")
	ErrUnsupportedLayout      = errors.New("unsupported plot layout")
	ErrSizeMismatch           = errors.New("plot size mismatch")
	ErrInvalidOutputDirectory = errors.New("invalid output directory")
	ErrIO                     = errors.New("i/o error")
	ErrInsufficientSpace      = errors.New("not enough disk space")
	ErrNotRegularFile         = errors.New("not a regular file")
)

// MalformedFilenameError is returned when a plot filename doesn't follow the
// `{id}_{startNonce}_{nonces}_{stagger}` convention.
type MalformedFilenameError struct {
	Name  string
	Field string
	Value string
	Err   error
}

func (err *MalformedFilenameError) Error() string {
	if err.Field == "" {
		return fmt.Sprintf("plot filename %q has wrong format: %v", err.Name, err.Err)
	}
	msg := fmt.Sprintf("%v of plot filename %q has wrong format: %q", err.Field, err.Name, err.Value)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *MalformedFilenameError) Is(target error) bool { return target == ErrMalformedFilename }
func (err *MalformedFilenameError) Unwrap() error        { return err.Err }

type UnsupportedLayoutError struct {
	Nonces  int64
	Stagger int64
}

func (err *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("converter only works with optimized plot files; nonces: %d, stagger: %d", err.Nonces, err.Stagger)
}

func (err *UnsupportedLayoutError) Is(target error) bool { return target == ErrUnsupportedLayout }

type SizeMismatchError struct {
	Path     string
	Expected uint64
	Actual   uint64
}

func (err *SizeMismatchError) Error() string {
	return fmt.Sprintf("expected plot size %d (%v) but got %d (%v), file: %v",
		err.Expected, bytefmt.ByteSize(err.Expected), err.Actual, bytefmt.ByteSize(err.Actual), err.Path)
}

func (err *SizeMismatchError) Is(target error) bool { return target == ErrSizeMismatch }

type InvalidOutputDirectoryError struct {
	Path string
	Err  error
}

func (err *InvalidOutputDirectoryError) Error() string {
	return fmt.Sprintf("%v is not a directory: %v", err.Path, err.Err)
}

func (err *InvalidOutputDirectoryError) Is(target error) bool { return target == ErrInvalidOutputDirectory }
func (err *InvalidOutputDirectoryError) Unwrap() error        { return err.Err }

// IOError wraps any filesystem failure (open, stat, read, write, sync, rename, preallocate).
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (err *IOError) Error() string {
	return fmt.Sprintf("%v %v: %v", err.Op, err.Path, err.Err)
}

func (err *IOError) Is(target error) bool { return target == ErrIO }
func (err *IOError) Unwrap() error        { return err.Err }
