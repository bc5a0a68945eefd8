package dimacs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseModels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cnf.models")
	content := "1 -2 3 0\n-1 -2 -3 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %s", err)
	}

	got, err := ParseModels(path)
	if err != nil {
		t.Fatalf("ParseModels() returned error: %s", err)
	}

	want := [][]bool{
		{true, false, true},
		{false, false, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseModels() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseModels_missingFile(t *testing.T) {
	if _, err := ParseModels(filepath.Join(t.TempDir(), "missing.models")); err == nil {
		t.Errorf("ParseModels() want error, got none")
	}
}
