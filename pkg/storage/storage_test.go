package storage

import (
	"path/filepath"
	"testing"
)

func TestSaveAndReadFile(t *testing.T) {
	s := &Storage{}
	path := filepath.Join(t.TempDir(), "nested", "out", "rates_extracted.json")

	if _, err := s.GetFileStats(path); err == nil {
		t.Fatal("GetFileStats() error = nil before save")
	}
	if err := s.SaveFile(path, []byte(`{"success":true}`)); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"success":true}` {
		t.Errorf("ReadFile() = %s", data)
	}

	stats, err := s.GetFileStats(path)
	if err != nil {
		t.Fatalf("GetFileStats() error = %v", err)
	}
	if stats.SizeBytes != int64(len(data)) {
		t.Errorf("SizeBytes = %d, want %d", stats.SizeBytes, len(data))
	}
}

func TestReadFile_Missing(t *testing.T) {
	s := &Storage{}
	if _, err := s.ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ReadFile() error = nil for missing file")
	}
	if _, err := s.GetFileStats(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("GetFileStats() error = nil for missing file")
	}
}
