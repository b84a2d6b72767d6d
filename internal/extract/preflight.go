package extract

import (
	"fmt"

	"golang.org/x/sys/unix"

	"dicomexport/internal/services"
)

// checkDestination verifies the destination directory is writable and sits on
// a filesystem with at least minFreeMiB available. A zero floor skips the
// space check.
func checkDestination(dest string, minFreeMiB int) error {
	if err := unix.Access(dest, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrValidation, component, "destination access", dest, err)
	}
	if minFreeMiB <= 0 {
		return nil
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(dest, &stat); err != nil {
		return services.Wrap(services.ErrValidation, component, "destination statfs", dest, err)
	}
	freeMiB := stat.Bavail * uint64(stat.Bsize) / (1 << 20)
	if freeMiB < uint64(minFreeMiB) {
		return services.Wrap(services.ErrValidation, component, "destination space",
			fmt.Sprintf("%d MiB free, need %d MiB", freeMiB, minFreeMiB), nil)
	}
	return nil
}
