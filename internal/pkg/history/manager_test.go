package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

func TestFileManager_Save(t *testing.T) {
	// Create temp directory for test
	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "history.json")

	mgr := NewFileManager(historyFile, 1000)

	entry := &Entry{
		Message:   "feat: add new feature",
		Summary:   "Adds a feature flag to the loader",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Committed: true,
	}

	err := mgr.Save(entry)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify entry was saved with generated ID and timestamp
	if entry.ID == "" {
		t.Error("Expected ID to be generated")
	}
	if entry.Timestamp.IsZero() {
		t.Error("Expected Timestamp to be set")
	}

	// Verify file exists
	if _, err := os.Stat(historyFile); os.IsNotExist(err) {
		t.Error("History file was not created")
	}
}

func TestFileManager_List(t *testing.T) {
	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "history.json")

	mgr := NewFileManager(historyFile, 1000)

	// Save multiple entries
	for i := 0; i < 5; i++ {
		entry := &Entry{
			Message:   "feat: feature " + string(rune('A'+i)),
			Summary:   "Changes one file",
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Committed: true,
		}
		if err := mgr.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// List all entries
	entries, err := mgr.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Expected 5 entries, got %d", len(entries))
	}

	// List with limit
	entries, err = mgr.List(3)
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(entries))
	}
}

func TestFileManager_List_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "nonexistent", "history.json")

	mgr := NewFileManager(historyFile, 1000)

	// List from non-existent file should return empty slice
	entries, err := mgr.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries, got %d", len(entries))
	}
}

func TestFileManager_Clear(t *testing.T) {
	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "history.json")

	mgr := NewFileManager(historyFile, 1000)

	// Save an entry
	entry := &Entry{
		Message:   "feat: test",
		Summary:   "Changes one file",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Committed: true,
	}
	if err := mgr.Save(entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Clear history
	if err := mgr.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	// Verify history is empty
	entries, err := mgr.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", len(entries))
	}
}

func TestFileManager_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "history.json")

	// Set max entries to 5 for testing
	mgr := NewFileManager(historyFile, 5)

	// Save 10 entries
	for i := 0; i < 10; i++ {
		entry := &Entry{
			Message:   "feat: feature " + string(rune('0'+i)),
			Summary:   "Changes one file",
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Committed: true,
		}
		if err := mgr.Save(entry); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// Should only have 5 entries (the most recent ones)
	entries, err := mgr.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Expected 5 entries after rotation, got %d", len(entries))
	}

	// Verify we have the most recent entries (5-9)
	for i, entry := range entries {
		expected := "feat: feature " + string(rune('0'+5+i))
		if entry.Message != expected {
			t.Errorf("Entry %d: expected message %q, got %q", i, expected, entry.Message)
		}
	}
}

func TestFileManager_PreservesExistingData(t *testing.T) {
	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "history.json")

	mgr := NewFileManager(historyFile, 1000)

	// Save first entry with specific data
	entry1 := &Entry{
		ID:        "test-id-1",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Message:   "feat: first feature",
		Summary:   "Changes one file",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Committed: true,
	}
	if err := mgr.Save(entry1); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Save second entry
	entry2 := &Entry{
		Message:   "fix: bug fix",
		Summary:   "Adds a feature flag to the loader",
		Provider:  "deepseek",
		Model:     "deepseek-chat",
		Committed: false,
	}
	if err := mgr.Save(entry2); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// List and verify both entries are preserved
	entries, err := mgr.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	// Verify first entry data is preserved
	if entries[0].ID != "test-id-1" {
		t.Errorf("Expected ID 'test-id-1', got %q", entries[0].ID)
	}
	if entries[0].Message != "feat: first feature" {
		t.Errorf("Expected message 'feat: first feature', got %q", entries[0].Message)
	}
	if entries[0].Provider != "openai" {
		t.Errorf("Expected provider 'openai', got %q", entries[0].Provider)
	}
}

func TestFileManager_FilePermissions(t *testing.T) {
	// Skip on Windows as file permissions work differently
	if os.PathSeparator == '\\' {
		t.Skip("Skipping file permissions test on Windows")
	}

	tmpDir := t.TempDir()
	historyFile := filepath.Join(tmpDir, "history.json")

	mgr := NewFileManager(historyFile, 1000)

	entry := &Entry{
		Message:   "feat: test",
		Summary:   "Changes one file",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Committed: true,
	}
	if err := mgr.Save(entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Check file permissions (should be 0600)
	info, err := os.Stat(historyFile)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("Expected file permissions 0600, got %o", perm)
	}
}

func TestNewFileManager_DefaultMaxEntries(t *testing.T) {
	mgr := NewFileManager("/tmp/test.json", 0)
	if mgr.maxEntries != DefaultMaxEntries {
		t.Errorf("Expected default max entries %d, got %d", DefaultMaxEntries, mgr.maxEntries)
	}

	mgr = NewFileManager("/tmp/test.json", -1)
	if mgr.maxEntries != DefaultMaxEntries {
		t.Errorf("Expected default max entries %d, got %d", DefaultMaxEntries, mgr.maxEntries)
	}
}

func TestFileManager_RoundTripsCommitFields(t *testing.T) {
	mgr := NewFileManager(filepath.Join(t.TempDir(), "nested", "history.json"), 10)

	entry := &Entry{
		Repository:    "/work/repo",
		Branch:        "main",
		Files:         []string{"a.txt", "b.txt"},
		Summary:       "Adds hello, removes old",
		Message:       "feat: update a.txt, b.txt\n\nDetails.",
		MessageSource: "generated",
		Provider:      "openai",
		Model:         "gpt-3.5-turbo",
		Committed:     true,
		Pushed:        true,
	}
	if err := mgr.Save(entry); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := mgr.List(1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.ID != entry.ID {
		t.Errorf("Expected ID %q, got %q", entry.ID, got.ID)
	}
	if len(got.Files) != 2 || got.Files[0] != "a.txt" || got.Files[1] != "b.txt" {
		t.Errorf("Unexpected files %v", got.Files)
	}
	if !got.Pushed || got.Branch != "main" || got.MessageSource != "generated" {
		t.Errorf("Commit fields not preserved: %+v", got)
	}
	if got.Title() != "feat: update a.txt, b.txt" {
		t.Errorf("Expected title of first line, got %q", got.Title())
	}
}

func TestFileManager_CorruptFile(t *testing.T) {
	historyFile := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(historyFile, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	mgr := NewFileManager(historyFile, 10)

	_, err := mgr.List(0)
	if !apperrors.HasCode(err, apperrors.ErrFileSystemError) {
		t.Errorf("Expected file system error from List, got %v", err)
	}
	if err := mgr.Save(&Entry{Message: "x"}); !apperrors.HasCode(err, apperrors.ErrFileSystemError) {
		t.Errorf("Expected file system error from Save, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	var mgr Manager = Disabled{}

	if err := mgr.Save(&Entry{Message: "x"}); err != nil {
		t.Errorf("Save failed: %v", err)
	}
	entries, err := mgr.List(0)
	if err != nil || len(entries) != 0 {
		t.Errorf("Expected no entries, got %v, %v", entries, err)
	}
	if err := mgr.Clear(); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
}
