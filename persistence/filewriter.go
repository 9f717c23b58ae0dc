package persistence

import (
	"os"

	"github.com/spacemeshos/poc1to2/shared"
)

// FileWriter writes whole blocks at absolute offsets of a file.
type FileWriter struct {
	file *os.File
}

// A compile time check to ensure that FileWriter fully implements the BlockWriter interface.
var _ BlockWriter = (*FileWriter)(nil)

// OpenFileWriter opens an existing file for writing, without truncating it.
func OpenFileWriter(name string) (*FileWriter, error) {
	f, err := os.OpenFile(name, os.O_WRONLY, 0)
	if err != nil {
		return nil, &shared.IOError{Op: "open", Path: name, Err: err}
	}
	return &FileWriter{file: f}, nil
}

// CreateFileWriter creates (or truncates) name and preallocates it to size bytes.
// A failed preallocation removes the file again.
func CreateFileWriter(name string, size int64) (*FileWriter, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, shared.OwnerReadWrite)
	if err != nil {
		return nil, &shared.IOError{Op: "create", Path: name, Err: err}
	}

	if err := Preallocate(f, size); err != nil {
		f.Close()
		os.Remove(name)
		return nil, &shared.IOError{Op: "preallocate", Path: name, Err: err}
	}

	return &FileWriter{file: f}, nil
}

func (w *FileWriter) WriteBlock(p []byte, off int64) error {
	if _, err := w.file.WriteAt(p, off); err != nil {
		return &shared.IOError{Op: "write", Path: w.file.Name(), Err: err}
	}
	return nil
}

// Close flushes the file contents to stable storage and closes it.
func (w *FileWriter) Close() error {
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return &shared.IOError{Op: "sync", Path: w.file.Name(), Err: err}
	}
	if err := w.file.Close(); err != nil {
		return &shared.IOError{Op: "close", Path: w.file.Name(), Err: err}
	}
	return nil
}
