// Package collector turns the modified paths of a repository into diff records.
package collector

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/commitgpt/commitgpt/internal/pkg/errors"
)

// BaseRef is the revision every diff is taken against.
const BaseRef = "HEAD"

// DiffRecord is the diff of one modified file.
type DiffRecord struct {
	Path string
	// Body holds only the +/- content lines, or the raw diff when the file
	// no longer exists on disk.
	Body    string
	Deleted bool
}

// Counts returns the number of added and removed content lines in the record.
func (r DiffRecord) Counts() (added, removed int) {
	for _, line := range strings.Split(r.Body, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// Source is the part of the repository the collector reads from.
type Source interface {
	Root() string
	Diff(ctx context.Context, ref, path string) (string, error)
}

// Collector produces one DiffRecord per modified path.
type Collector interface {
	Collect(ctx context.Context, files []string) ([]DiffRecord, error)
}

// DefaultCollector implements Collector on top of a Source.
type DefaultCollector struct {
	source Source
}

// statFile is a variable to allow mocking in tests.
var statFile = os.Stat

// New creates a collector reading from source.
func New(source Source) *DefaultCollector {
	return &DefaultCollector{source: source}
}

// Collect fetches and normalizes the diff of each file, in input order.
// The first failing diff stops the collection.
func (c *DefaultCollector) Collect(ctx context.Context, files []string) ([]DiffRecord, error) {
	records := make([]DiffRecord, 0, len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewAbortedError(err)
		}

		raw, err := c.source.Diff(ctx, BaseRef, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, apperrors.NewAbortedError(ctxErr)
			}
			if appErr := apperrors.GetAppError(err); appErr != nil {
				return nil, appErr.WithContext("path", path)
			}
			return nil, apperrors.NewRepositoryError(err, "").WithContext("path", path)
		}

		record := DiffRecord{Path: path}
		if exists(filepath.Join(c.source.Root(), path)) {
			record.Body = Normalize(raw)
		} else {
			record.Body = raw
			record.Deleted = true
		}

		apperrors.Debug("collected %s (deleted=%t, %d bytes)", path, record.Deleted, len(record.Body))
		records = append(records, record)
	}

	return records, nil
}

func exists(path string) bool {
	_, err := statFile(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// Normalize keeps only the added and removed content lines of a unified
// diff. File header lines starting with "---" or "+++" are dropped. Kept
// lines are unchanged, including a trailing carriage return.
func Normalize(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.HasPrefix(line, "---") || strings.HasPrefix(line, "+++") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

// JoinBodies joins the record bodies with newlines, in order.
func JoinBodies(records []DiffRecord) string {
	bodies := make([]string, len(records))
	for i, r := range records {
		bodies[i] = r.Body
	}
	return strings.Join(bodies, "\n")
}
