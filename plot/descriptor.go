package plot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spacemeshos/poc1to2/shared"
)

// Descriptor describes a validated, optimized PoC1 plot file and where its
// converted counterpart goes. It is immutable once constructed.
type Descriptor struct {
	Name

	// Size of the plot file, in bytes.
	Size uint64

	Path   string
	OutDir string

	// InPlace is set when no output directory was given. The plot is then
	// converted within the source file, and OutDir is the source's directory.
	InPlace bool
}

// NewDescriptor validates the plot at path and derives its metadata from
// its filename. An empty outDir selects in-place conversion.
// It only reads file metadata and never modifies the filesystem.
func NewDescriptor(path, outDir string) (*Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &shared.IOError{Op: "stat", Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &shared.IOError{Op: "stat", Path: path, Err: shared.ErrNotRegularFile}
	}

	name, err := ParseName(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	if name.Nonces != name.Stagger {
		return nil, &shared.UnsupportedLayoutError{Nonces: name.Nonces, Stagger: name.Stagger}
	}

	expected := uint64(name.Nonces) * shared.NonceSize
	if size := uint64(info.Size()); size != expected {
		return nil, &shared.SizeMismatchError{Path: path, Expected: expected, Actual: size}
	}

	inPlace := outDir == ""
	if inPlace {
		outDir = filepath.Dir(path)
	} else if err := validateOutDir(outDir); err != nil {
		return nil, err
	}

	return &Descriptor{
		Name:    name,
		Size:    expected,
		Path:    path,
		OutDir:  outDir,
		InPlace: inPlace,
	}, nil
}

func validateOutDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &shared.InvalidOutputDirectoryError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &shared.InvalidOutputDirectoryError{Path: dir, Err: fmt.Errorf("file mode %v", info.Mode())}
	}
	return nil
}

// OutputPath is the final location of the converted plot.
func (d *Descriptor) OutputPath() string {
	return filepath.Join(d.OutDir, d.PoC2Name())
}

// BlockSize is the size of one scoop block: the given scoop of every nonce.
func (d *Descriptor) BlockSize() int64 {
	return d.Nonces * shared.ScoopSize
}

func (d *Descriptor) String() string {
	mode := "copy"
	if d.InPlace {
		mode = "in-place"
	}
	return fmt.Sprintf("plot %v (id: %d, start nonce: %d, nonces: %d, size: %d, mode: %v)",
		d.Path, d.ID, d.StartNonce, d.Nonces, d.Size, mode)
}
