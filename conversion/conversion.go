package conversion

import (
	"errors"
	"fmt"
	"os"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/spacemeshos/poc1to2/persistence"
	"github.com/spacemeshos/poc1to2/plot"
	"github.com/spacemeshos/poc1to2/shared"
)

var ErrAlreadyConverted = errors.New("plot already converted")

// Converter rewrites a single optimized PoC1 plot into the PoC2 layout.
// It is meant to be used once.
type Converter struct {
	plot *plot.Descriptor
	opts *option

	done bool
}

func NewConverter(d *plot.Descriptor, opts ...OptionFunc) (*Converter, error) {
	if d == nil {
		return nil, errors.New("plot descriptor is required")
	}

	options := defaultOpts()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &Converter{plot: d, opts: options}, nil
}

// Convert swaps the second hash of every scoop record between mirrored scoop
// blocks. In-place conversions rename the plot once all pairs are written;
// an error half way through leaves a plot that is neither PoC1 nor PoC2.
// Copy conversions write to a new file and never modify the source.
func (c *Converter) Convert() error {
	if c.done {
		return ErrAlreadyConverted
	}
	c.done = true

	logger := c.opts.logger.With(zap.String("plot", c.plot.Path))
	logger.Info("conversion: starting",
		zap.Stringer("descriptor", c.plot),
		zap.String("size", bytefmt.ByteSize(c.plot.Size)),
		zap.String("output", c.plot.OutputPath()),
	)

	if c.plot.InPlace {
		if err := c.checkRenameTarget(); err != nil {
			return err
		}
	}

	start := time.Now()
	if err := c.transform(); err != nil {
		return err
	}

	if c.plot.InPlace {
		if err := c.finalize(logger); err != nil {
			return err
		}
	}

	logger.Info("conversion: completed",
		zap.String("output", c.plot.OutputPath()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// transform runs the scoop pass. Both handles are closed when it returns, so
// the plot can be renamed afterwards.
func (c *Converter) transform() error {
	from, err := persistence.NewFileReader(c.plot.Path)
	if err != nil {
		return err
	}
	defer from.Close()

	if from.Size() != int64(c.plot.Size) {
		// Mirrored offsets are only valid for the validated size.
		return &shared.SizeMismatchError{Path: c.plot.Path, Expected: c.plot.Size, Actual: uint64(from.Size())}
	}

	to, err := c.openDestination()
	if err != nil {
		return err
	}

	if err := c.swapScoops(from, to); err != nil {
		to.Close()
		return err
	}
	return to.Close()
}

func (c *Converter) openDestination() (persistence.BlockWriter, error) {
	if c.plot.InPlace {
		return persistence.OpenFileWriter(c.plot.Path)
	}

	if c.opts.spaceCheck {
		if err := shared.ValidateSpace(c.plot.OutDir, c.plot.Size); err != nil {
			return nil, &shared.IOError{Op: "preallocate", Path: c.plot.OutputPath(), Err: err}
		}
	}
	return persistence.CreateFileWriter(c.plot.OutputPath(), int64(c.plot.Size))
}

// swapScoops performs the single pass over all mirrored scoop pairs. The two
// blocks of a pair never overlap, which is what makes reading and writing
// through independent handles of the same file safe.
func (c *Converter) swapScoops(from persistence.BlockReader, to persistence.BlockWriter) error {
	blockSize := c.plot.BlockSize()
	forward := make([]byte, blockSize)
	backward := make([]byte, blockSize)

	c.progressf("start processing scoops\n")
	for _, pair := range c.plot.Pairs() {
		if err := from.ReadBlock(forward, pair.Forward); err != nil {
			return err
		}
		if err := from.ReadBlock(backward, pair.Backward); err != nil {
			return err
		}

		c.progressf("%d/%d\n", pair.Scoop, shared.ScoopsPerNonce-pair.Scoop)

		plot.SwapSecondHalves(forward, backward)

		if err := to.WriteBlock(backward, pair.Backward); err != nil {
			return err
		}
		if err := to.WriteBlock(forward, pair.Forward); err != nil {
			return err
		}
	}
	c.progressf("finished processing scoops\n")
	return nil
}

// checkRenameTarget fails when the converted plot could not be renamed into
// place, before a single byte of the source is rewritten.
func (c *Converter) checkRenameTarget() error {
	out := c.plot.OutputPath()
	info, err := os.Lstat(out)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return &shared.IOError{Op: "rename", Path: out, Err: err}
	case !info.Mode().IsRegular():
		return &shared.IOError{Op: "rename", Path: out, Err: fmt.Errorf("%w: %v", shared.ErrNotRegularFile, info.Mode())}
	}
	return nil
}

func (c *Converter) finalize(logger *zap.Logger) error {
	out := c.plot.OutputPath()
	if err := atomic.ReplaceFile(c.plot.Path, out); err != nil {
		return &shared.IOError{Op: "rename", Path: c.plot.Path, Err: err}
	}
	logger.Info("conversion: renamed plot", zap.String("to", out))
	return nil
}

func (c *Converter) progressf(format string, args ...any) {
	if c.opts.progress == nil {
		return
	}
	// Progress write errors are ignored.
	_, _ = fmt.Fprintf(c.opts.progress, format, args...)
}

// Convert validates the plot at path and converts it. An empty outDir
// converts in place.
func Convert(path, outDir string, opts ...OptionFunc) (*plot.Descriptor, error) {
	d, err := plot.NewDescriptor(path, outDir)
	if err != nil {
		return nil, err
	}

	c, err := NewConverter(d, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Convert(); err != nil {
		return d, err
	}
	return d, nil
}

// Exists reports whether a file is already present at the converted plot's location.
func Exists(d *plot.Descriptor) (bool, error) {
	_, err := os.Stat(d.OutputPath())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, &shared.IOError{Op: "stat", Path: d.OutputPath(), Err: err}
	}
}
