package persistence

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Preallocate reserves size bytes for f so that running out of disk space
// fails here rather than in the middle of a write. Filesystems without
// fallocate support fall back to a (possibly sparse) truncate.
func Preallocate(f *os.File, size int64) error {
	if size == 0 {
		return nil
	}

	err := unix.Fallocate(int(f.Fd()), 0, 0, size)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.EOPNOTSUPP), errors.Is(err, unix.ENOSYS):
		return truncate(f, size)
	default:
		return fmt.Errorf("fallocate %d bytes: %w", size, err)
	}
}
