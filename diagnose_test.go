package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	if err := writableDir(dir); err != nil {
		t.Fatalf("writableDir(%s) = %v", dir, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %v", entries)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writableDir(filepath.Join(file, "sub")); err == nil {
		t.Error("expected error below a regular file")
	}
}
