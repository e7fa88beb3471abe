// Package history records the summaries and commit messages accepted by commitgpt.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

const (
	// DefaultMaxEntries is the default maximum number of history entries.
	DefaultMaxEntries = 1000
	// DefaultFileName is the history file name inside the commitgpt directory.
	DefaultFileName = "history.json"
)

// Entry is one accepted commit.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	// Repository is the work tree root the commit was made in.
	Repository string   `json:"repository"`
	Branch     string   `json:"branch,omitempty"`
	Files      []string `json:"files"`
	Summary    string   `json:"summary"`
	Message    string   `json:"message"`
	// MessageSource is "generated" or "operator".
	MessageSource string `json:"message_source"`
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	Committed     bool   `json:"committed"`
	Pushed        bool   `json:"pushed"`
}

// Title returns the first line of the commit message.
func (e *Entry) Title() string {
	title, _, _ := strings.Cut(e.Message, "\n")
	return title
}

// Manager defines the interface for history management.
type Manager interface {
	Save(entry *Entry) error
	List(limit int) ([]*Entry, error)
	Clear() error
}

// FileManager implements Manager using a JSON file for storage.
type FileManager struct {
	filePath   string
	maxEntries int
	mu         sync.Mutex
}

// NewFileManager creates a new FileManager with the specified file path and max entries.
func NewFileManager(filePath string, maxEntries int) *FileManager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &FileManager{
		filePath:   filePath,
		maxEntries: maxEntries,
	}
}

// Path returns the history file path.
func (m *FileManager) Path() string {
	return m.filePath
}

// Save appends entry to the history file, assigning an ID and timestamp
// when missing. The oldest entries are dropped beyond maxEntries.
func (m *FileManager) Save(entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	entries, err := m.loadEntries()
	if err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to load history")
	}

	entries = append(entries, entry)
	if len(entries) > m.maxEntries {
		entries = entries[len(entries)-m.maxEntries:]
	}

	if err := m.saveEntries(entries); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to save history")
	}
	return nil
}

// List returns the most recent entries up to limit, oldest first.
// A limit of 0 or less returns all entries.
func (m *FileManager) List(limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.loadEntries()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to load history")
	}

	if limit <= 0 || len(entries) <= limit {
		return entries, nil
	}
	return entries[len(entries)-limit:], nil
}

// Clear removes all entries from the history file.
func (m *FileManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.saveEntries([]*Entry{}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError, "failed to clear history")
	}
	return nil
}

func (m *FileManager) loadEntries() ([]*Entry, error) {
	data, err := os.ReadFile(m.filePath)
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return entries, nil
}

func (m *FileManager) saveEntries(entries []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(m.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// User read/write only, messages may quote code.
	if err := os.WriteFile(m.filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// Disabled is a Manager that stores nothing.
type Disabled struct{}

func (Disabled) Save(*Entry) error          { return nil }
func (Disabled) List(int) ([]*Entry, error) { return []*Entry{}, nil }
func (Disabled) Clear() error               { return nil }
