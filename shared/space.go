package shared

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/ricochet2200/go-disk-usage/du"
)

func AvailableSpace(path string) uint64 {
	usage := du.NewDiskUsage(path)
	return usage.Available()
}

// ValidateSpace checks that the filesystem holding dir can fit required more bytes.
func ValidateSpace(dir string, required uint64) error {
	available := AvailableSpace(dir)
	if required > available {
		return fmt.Errorf("%w. required: %v, available: %v",
			ErrInsufficientSpace, bytefmt.ByteSize(required), bytefmt.ByteSize(available))
	}
	return nil
}
