package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ErrInvalidFolder is returned for folder names that are empty or contain path elements
var ErrInvalidFolder = errors.New("invalid upload folder")

// ErrOutsideRoot is returned for paths that do not resolve under the uploads root
var ErrOutsideRoot = errors.New("path is outside the uploads root")

// ValidFolder reports whether folder can be used as a directory under the uploads root
func ValidFolder(folder string) bool {
	return folderPattern.MatchString(folder)
}

// Storage stores files on the local filesystem under <root>/<folder>/<filename>
type Storage struct {
	root string
}

// NewStorage creates a Storage rooted at root, which is made absolute
func NewStorage(root string) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads root: %w", err)
	}
	return &Storage{root: abs}, nil
}

// Root returns the absolute uploads root
func (s *Storage) Root() string {
	return s.root
}

// Path returns the absolute path of folder/filename
func (s *Storage) Path(folder, filename string) string {
	return filepath.Join(s.root, folder, filename)
}

// Write stores the bytes of r as folder/filename and returns the absolute path and the written size.
// Bytes go to a temporary file in the destination folder and are renamed into place, so a failed
// write never leaves a partial destination file.
func (s *Storage) Write(folder, filename string, r io.Reader) (string, int64, error) {
	if !ValidFolder(folder) {
		return "", 0, ErrInvalidFolder
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create folder: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filename+"-*.part")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to set file mode: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to move file into place: %w", err)
	}

	// Size is read back from the stored file
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat stored file: %w", err)
	}

	return path, info.Size(), nil
}

// Delete removes a stored file by absolute path.
// It returns false without error when the file does not exist.
func (s *Storage) Delete(path string) (bool, error) {
	clean, err := s.contain(path)
	if err != nil {
		return false, err
	}

	if err := os.Remove(clean); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

// contain resolves path and checks that it lies strictly inside the root
func (s *Storage) contain(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}
