//go:build !linux

package persistence

import "os"

func Preallocate(f *os.File, size int64) error {
	return truncate(f, size)
}
