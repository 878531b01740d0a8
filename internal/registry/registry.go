// Package registry discovers the benchmarked tool wrappers. Every wrapper is
// an executable honoring the single-contract invocation
// `<wrapper> <input-file>`, writing its report to stdout.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoTools is returned when the wrapper directory holds no usable entries.
var ErrNoTools = errors.New("no executable tool wrappers found")

// DuplicateToolError reports two wrapper files normalizing to one identifier.
type DuplicateToolError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("duplicate tool identifier %q: %s and %s", e.Name, e.First, e.Second)
}

// Tool describes one benchmark subject: a unique identifier and the wrapper
// path to invoke. The slice returned by Discover is the registry for the
// whole run; nothing mutates it afterwards.
type Tool struct {
	Name string
	Path string
}

// Discover lists executable regular files directly in dir, sorted by
// identifier. Non-executable entries and subdirectories are ignored.
func Discover(dir string) ([]Tool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tool directory %s: %w", dir, err)
	}

	seen := map[string]string{}
	var tools []Tool
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name := Identifier(entry.Name())
		if prev, ok := seen[name]; ok {
			return nil, &DuplicateToolError{Name: name, First: prev, Second: path}
		}
		seen[name] = path
		tools = append(tools, Tool{Name: name, Path: path})
	}
	if len(tools) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoTools, dir)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools, nil
}

// Identifier derives a tool identifier from a wrapper file name by stripping
// the extension, so fqcnt_rust.sh and fqcnt_rust collide intentionally.
func Identifier(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// InvokeResult holds one direct wrapper invocation outcome.
type InvokeResult struct {
	Output   []byte
	ExitCode int
	Duration time.Duration
}

// Invoke runs the wrapper against one input file with the uniform positional
// contract. A non-zero exit is reported through ExitCode, not as an error;
// err covers only failures to start or interrupt the process.
func (t Tool) Invoke(ctx context.Context, inputPath string) (*InvokeResult, error) {
	cmd := exec.CommandContext(ctx, t.Path, inputPath)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	start := time.Now()
	err := cmd.Run()
	res := &InvokeResult{Output: stdout.Bytes(), Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("invoking %s: %w", t.Name, err)
	}
	return res, nil
}
