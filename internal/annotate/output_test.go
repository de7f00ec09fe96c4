package annotate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	got := OutputPath(filepath.Join("/src", "pkg", "main.go"))
	want := filepath.Join("/src", "pkg", "typer_ann", "main.ann.go")
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestWriteOutput_DerivedPath(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "main.go")
	if err := os.WriteFile(orig, []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := WriteOutput(orig, []byte("annotated\n"), false); err != nil {
		t.Fatalf("write output: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "typer_ann", "main.ann.go"))
	if err != nil {
		t.Fatalf("read derived output: %v", err)
	}
	if string(data) != "annotated\n" {
		t.Fatalf("unexpected content: %q", data)
	}

	// Second write must replace stale output, tolerating the existing dir.
	if err := WriteOutput(orig, []byte("fresh\n"), false); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "typer_ann", "main.ann.go"))
	if string(data) != "fresh\n" {
		t.Fatalf("stale output not replaced: %q", data)
	}
}

func TestWriteOutput_InPlace(t *testing.T) {
	dir := t.TempDir()
	orig := filepath.Join(dir, "main.go")
	if err := os.WriteFile(orig, []byte("old content that is longer\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := WriteOutput(orig, []byte("new\n"), true); err != nil {
		t.Fatalf("write in place: %v", err)
	}
	data, err := os.ReadFile(orig)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Delete-then-create: nothing of the longer old content survives.
	if string(data) != "new\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteOutput_BadDirIsFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "typer_ann")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	err := WriteOutput(filepath.Join(dir, "main.go"), []byte("x\n"), false)
	if err == nil {
		t.Fatalf("expected fatal error when annotation dir cannot be created")
	}
}
