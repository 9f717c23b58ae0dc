package persistence

import (
	"fmt"
	"io"
	"os"

	"github.com/spacemeshos/poc1to2/shared"
)

// FileReader reads whole blocks at absolute offsets of a file.
type FileReader struct {
	file *os.File
	size int64
}

// A compile time check to ensure that FileReader fully implements the BlockReader interface.
var _ BlockReader = (*FileReader)(nil)

func NewFileReader(name string) (*FileReader, error) {
	file, err := os.OpenFile(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, &shared.IOError{Op: "open", Path: name, Err: err}
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &shared.IOError{Op: "stat", Path: name, Err: err}
	}

	return &FileReader{
		file: file,
		size: info.Size(),
	}, nil
}

// ReadBlock fills p with the bytes starting at off. A short read is an error.
func (r *FileReader) ReadBlock(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > r.size {
		return &shared.IOError{
			Op:   "read",
			Path: r.file.Name(),
			Err:  fmt.Errorf("block [%d, %d) out of file bounds (%d): %w", off, off+int64(len(p)), r.size, io.ErrUnexpectedEOF),
		}
	}

	if _, err := r.file.ReadAt(p, off); err != nil {
		return &shared.IOError{Op: "read", Path: r.file.Name(), Err: err}
	}
	return nil
}

// Size is the file size observed when the reader was opened.
func (r *FileReader) Size() int64 {
	return r.size
}

func (r *FileReader) Close() error {
	return r.file.Close()
}
