//go:build !linux

package cache

import (
	"fmt"
	"runtime"
)

// EvictFile is unsupported off Linux; cold staging degrades to the ram-copy
// fallback and records why.
func EvictFile(path string) error {
	return fmt.Errorf("page cache eviction not supported on %s", runtime.GOOS)
}
