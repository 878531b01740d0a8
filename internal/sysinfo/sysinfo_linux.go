//go:build linux

package sysinfo

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

func fillPlatform(info *Info) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err == nil {
		info.Kernel = charsToString(uname.Release[:])
	}
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err == nil {
		info.MemTotalBytes = uint64(si.Totalram) * uint64(si.Unit)
	}
	info.CPUModel = cpuModel()
}

func cpuModel() string {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func charsToString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
