// Package sysinfo captures the hardware/software environment snapshot stored
// with every run for reproducibility. Collection is best-effort: fields the
// platform cannot provide stay empty rather than failing the run.
package sysinfo

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

type Info struct {
	Hostname      string            `json:"hostname"`
	OS            string            `json:"os"`
	Arch          string            `json:"arch"`
	Kernel        string            `json:"kernel,omitempty"`
	CPUModel      string            `json:"cpu_model,omitempty"`
	CPUCount      int               `json:"cpu_count"`
	MemTotalBytes uint64            `json:"mem_total_bytes,omitempty"`
	GoVersion     string            `json:"go_version"`
	ToolVersions  map[string]string `json:"tool_versions,omitempty"`
	CollectedAt   time.Time         `json:"collected_at"`
}

// Collect gathers the snapshot, probing each named external tool for its
// version string.
func Collect(ctx context.Context, versionTools ...string) Info {
	info := Info{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		CPUCount:    runtime.NumCPU(),
		GoVersion:   runtime.Version(),
		CollectedAt: time.Now().UTC(),
	}
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	}
	fillPlatform(&info)

	for _, tool := range versionTools {
		v := probeVersion(ctx, tool)
		if v == "" {
			continue
		}
		if info.ToolVersions == nil {
			info.ToolVersions = map[string]string{}
		}
		info.ToolVersions[tool] = v
	}
	return info
}

func probeVersion(ctx context.Context, tool string) string {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, tool, "--version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
