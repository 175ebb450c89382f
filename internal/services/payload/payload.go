// Package payload prepares the archive uploaded with an import request.
// The server expects a ZIP holding a single CSV file. A bare CSV is wrapped
// into such an archive; the CSV content itself is never inspected.
package payload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/ternarybob/subimport/internal/models"
)

// MaxFileSize bounds what is read into memory for a single upload.
const MaxFileSize = 512 * 1024 * 1024 // 512 MB

// csvExtensions are wrapped into a ZIP before upload.
var csvExtensions = map[string]bool{
	".csv": true,
	".tsv": true,
	".txt": true,
}

// Load reads a file from disk and packages it for upload.
func Load(path string) (*models.UploadFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s is too large: %d bytes (max %d)", path, info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Package(filepath.Base(path), content, info.ModTime())
}

// Package returns an upload file for name/content. ZIP archives pass through
// unchanged, CSV files are wrapped into a single-entry ZIP named <base>.zip.
func Package(name string, content []byte, modified time.Time) (*models.UploadFile, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".zip":
		return &models.UploadFile{Name: name, Content: content}, nil
	case csvExtensions[ext]:
		archive, err := zipSingle(name, content, modified)
		if err != nil {
			return nil, err
		}
		return &models.UploadFile{
			Name:    strings.TrimSuffix(name, filepath.Ext(name)) + ".zip",
			Content: archive,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .zip or .csv", ext)
	}
}

func zipSingle(name string, content []byte, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	header := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	if !modified.IsZero() {
		header.Modified = modified
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalise zip: %w", err)
	}

	return buf.Bytes(), nil
}
