package datagen_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/fqbench/internal/datagen"
	"github.com/signalnine/fqbench/internal/matrix"
)

func TestGenerateRunsCommandsInOrder(t *testing.T) {
	dir := t.TempDir()
	r := &datagen.Runner{
		DataDir: dir,
		Commands: []string{
			"echo genome > {dir}/reference.fasta",
			"echo {size} > {raw}",
			"cp {raw} {gz}",
			"cp {raw} {bgz}",
		},
		Stderr: io.Discard,
	}
	if err := r.Generate("0.1m"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, f := range matrix.FormatOrder {
		if _, err := os.Stat(matrix.InputPath(dir, "0.1m", f)); err != nil {
			t.Errorf("missing %s output: %v", f, err)
		}
	}
	data, err := os.ReadFile(matrix.InputPath(dir, "0.1m", matrix.FormatRaw))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "0.1m\n" {
		t.Errorf("placeholder expansion: got %q", data)
	}
}

func TestGenerateIntoSeparateDir(t *testing.T) {
	base := t.TempDir()
	fresh := filepath.Join(base, "really_cold_1m_raw")
	r := &datagen.Runner{
		DataDir:  base,
		Commands: []string{"echo fresh > {raw}"},
		Stderr:   io.Discard,
	}
	if err := r.GenerateInto(fresh, "1m"); err != nil {
		t.Fatalf("GenerateInto: %v", err)
	}
	if _, err := os.Stat(matrix.InputPath(fresh, "1m", matrix.FormatRaw)); err != nil {
		t.Errorf("fresh raw file not created: %v", err)
	}
	if _, err := os.Stat(matrix.InputPath(base, "1m", matrix.FormatRaw)); err == nil {
		t.Error("canonical data dir should be untouched")
	}
}

func TestGenerateFailure(t *testing.T) {
	r := &datagen.Runner{
		DataDir:  t.TempDir(),
		Commands: []string{"exit 7"},
		Stderr:   io.Discard,
	}
	err := r.Generate("1m")
	var genErr *datagen.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if genErr.Size != "1m" {
		t.Errorf("size: got %q, want %q", genErr.Size, "1m")
	}
}

func TestGenerateNoCommands(t *testing.T) {
	r := &datagen.Runner{DataDir: t.TempDir()}
	if err := r.Generate("1m"); err == nil {
		t.Error("expected error with no generation commands configured")
	}
}
