package conversion

import (
	"errors"
	"io"

	"go.uber.org/zap"
)

type option struct {
	logger *zap.Logger
	// Destination of per scoop pair progress lines. nil disables them.
	progress io.Writer
	// Whether copy mode verifies free space in the output directory before
	// creating the destination file.
	spaceCheck bool
}

func defaultOpts() *option {
	return &option{
		logger:     zap.NewNop(),
		spaceCheck: true,
	}
}

type OptionFunc func(*option) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		if logger == nil {
			return errors.New("`logger` must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithProgress writes a line for every scoop pair to w, before it is swapped.
func WithProgress(w io.Writer) OptionFunc {
	return func(o *option) error {
		o.progress = w
		return nil
	}
}

func WithDiskSpaceCheck(enabled bool) OptionFunc {
	return func(o *option) error {
		o.spaceCheck = enabled
		return nil
	}
}
