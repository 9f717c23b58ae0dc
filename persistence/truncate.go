package persistence

import (
	"fmt"
	"os"
)

func truncate(f *os.File, size int64) error {
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("failed to preallocate size %d: %w", size, err)
	}
	return nil
}
