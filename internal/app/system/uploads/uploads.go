// Package uploads stores submission attachments under unique paths so
// concurrent uploads of identically named files never collide.
package uploads

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// Info contains metadata about a stored file.
type Info struct {
	Path        string
	FileName    string
	Size        int64
	ContentType string
}

// Save stores a file with a unique path and returns its info.
// The path is generated as: submissions/YYYY/MM/uuid-filename
func Save(ctx context.Context, store storage.Store, filename string, reader io.Reader, size int64, contentType string) (Info, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("submissions/%04d/%02d", now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename))
	path := filepath.ToSlash(filepath.Join(dateDir, uniqueName))

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, path, reader, opts); err != nil {
		return Info{}, fmt.Errorf("failed to store file: %w", err)
	}

	return Info{
		Path:        path,
		FileName:    filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Remove deletes a previously stored file. Safe to call with an empty
// path; it reports nothing to delete as success.
func Remove(ctx context.Context, store storage.Store, path string) error {
	if path == "" {
		return nil
	}
	return store.Delete(ctx, path)
}

// SanitizeFilename removes or replaces characters that could be problematic in filenames.
func SanitizeFilename(filename string) string {
	// Get just the filename, not any path components
	filename = filepath.Base(filename)

	// Replace problematic characters
	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	// Ensure we have a reasonable filename
	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		// Truncate but preserve extension if present
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
