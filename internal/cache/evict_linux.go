//go:build linux

package cache

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// EvictFile asks the kernel to drop the file's pages from the page cache via
// posix_fadvise(DONTNEED). Unprivileged, scoped to the one file. Dirty pages
// are flushed first so the advice can take effect.
func EvictFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s for eviction: %w", path, err)
	}
	defer f.Close()

	fd := int(f.Fd())
	if err := unix.Fdatasync(fd); err != nil {
		return fmt.Errorf("fdatasync %s: %w", path, err)
	}
	if err := unix.Fadvise(fd, 0, 0, unix.FADV_DONTNEED); err != nil {
		return fmt.Errorf("fadvise %s: %w", path, err)
	}
	return nil
}
