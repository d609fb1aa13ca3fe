package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads that are not GIF, JPEG or PNG.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Accepted image extensions and their types.
var imageTypes = map[string]string{
	".gif":  "GIF",
	".jpg":  "JPEG",
	".jpeg": "JPEG",
	".png":  "PNG",
}

// ImageAllowed reports whether name has an accepted image extension.
func ImageAllowed(name string) bool {
	_, ok := imageTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// UploadService stores avatars and photos sent with submissions.
type UploadService struct {
	uploadsDir string
}

// NewUploadService creates a new upload service.
func NewUploadService(dataDir string) *UploadService {
	return &UploadService{
		uploadsDir: filepath.Join(dataDir, "uploads"),
	}
}

// Save writes r under a fresh name keeping the extension of name and
// returns the stored name.
func (s *UploadService) Save(name string, r io.Reader) (string, error) {
	if !ImageAllowed(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}
	if err := os.MkdirAll(s.uploadsDir, 0755); err != nil {
		return "", err
	}

	stored := uuid.NewString() + strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.uploadsDir, stored)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return stored, nil
}

// Remove deletes a stored upload. A missing file is not an error.
func (s *UploadService) Remove(stored string) error {
	err := os.Remove(filepath.Join(s.uploadsDir, filepath.Base(stored)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the stored uploads.
func (s *UploadService) List() ([]UploadFile, error) {
	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []UploadFile{}, nil
		}
		return nil, err
	}

	files := []UploadFile{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileType, ok := imageTypes[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, UploadFile{
			Name:     entry.Name(),
			Size:     formatSize(info.Size()),
			FileType: fileType,
		})
	}
	return files, nil
}

// UploadsDir returns the path to the uploads directory.
func (s *UploadService) UploadsDir() string {
	return s.uploadsDir
}

// formatSize returns a human-readable file size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
