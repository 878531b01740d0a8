// Package datagen drives the external data-generation collaborator: the
// configured shell commands that synthesize a reference genome, sample reads
// from it, and compress the result.
package datagen

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/signalnine/fqbench/internal/matrix"
)

// GenerationError wraps a failed generation command for one size.
type GenerationError struct {
	Size string
	Cmd  string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating size %s: %q: %v", e.Size, e.Cmd, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Runner executes the configured generation commands in order via the shell.
// Supported placeholders: {size}, {dir}, {raw}, {gz}, {bgz}.
type Runner struct {
	DataDir  string
	Commands []string
	Stderr   io.Writer
}

// Generate materializes the inputs for one size into the data directory.
func (r *Runner) Generate(size string) error {
	return r.GenerateInto(r.DataDir, size)
}

// GenerateInto runs the generation pipeline with outputs rooted at dir.
// Really-cold staging points dir at a fresh scenario-scoped directory so the
// produced file has no page-cache history shared with earlier trials.
func (r *Runner) GenerateInto(dir, size string) error {
	if len(r.Commands) == 0 {
		return &GenerationError{Size: size, Err: fmt.Errorf("no generation commands configured")}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &GenerationError{Size: size, Err: err}
	}
	repl := strings.NewReplacer(
		"{size}", size,
		"{dir}", dir,
		"{raw}", matrix.InputPath(dir, size, matrix.FormatRaw),
		"{gz}", matrix.InputPath(dir, size, matrix.FormatGzip),
		"{bgz}", matrix.InputPath(dir, size, matrix.FormatBgzip),
	)
	for _, tmpl := range r.Commands {
		cmdline := repl.Replace(tmpl)
		cmd := exec.Command("sh", "-c", cmdline)
		cmd.Stderr = r.stderr()
		if err := cmd.Run(); err != nil {
			return &GenerationError{Size: size, Cmd: cmdline, Err: err}
		}
	}
	return nil
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}
