package seen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jimezsa/leadscout/internal/models"
)

func TestReadWriteLeads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history", "leads.json")

	leads := []models.Lead{{Name: "Jane Doe", Title: "CEO", Company: "Acme", Location: models.Sentinel, URL: "https://www.linkedin.com/in/jane"}}
	if err := WriteLeads(path, leads); err != nil {
		t.Fatalf("WriteLeads() error = %v", err)
	}

	got, err := ReadLeads(path)
	if err != nil {
		t.Fatalf("ReadLeads() error = %v", err)
	}
	if len(got) != 1 || got[0] != leads[0] {
		t.Fatalf("unexpected leads read back: %+v", got)
	}
}

func TestReadLeadsAllowMissing(t *testing.T) {
	dir := t.TempDir()

	got, err := ReadLeadsAllowMissing(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("ReadLeadsAllowMissing() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history for missing file, got %d", len(got))
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got, err := ReadLeads(empty); err != nil || len(got) != 0 {
		t.Fatalf("ReadLeads(empty) = %v, %v", got, err)
	}

	if _, err := ReadLeads(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
