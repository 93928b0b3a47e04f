package upload

import (
	"errors"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"
)

// URLPrefix is the public path prefix of stored files
const URLPrefix = "/uploads"

// ErrInvalidURL is returned for URLs that are not of the form /uploads/<folder>/<filename>
var ErrInvalidURL = errors.New("invalid upload URL")

// Location identifies a stored file
type Location struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// GenerateFileName builds <folder>-<unix ms>-<9 digit random>.<ext>.
// ext may be given with or without the leading dot.
func GenerateFileName(folder, ext string, now time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	suffix := 100000000 + rand.Intn(900000000)
	return fmt.Sprintf("%s-%d-%d%s", folder, now.UnixMilli(), suffix, ext)
}

// PublicURL returns the served URL of folder/filename
func PublicURL(folder, filename string) string {
	return URLPrefix + "/" + folder + "/" + filename
}

// ParseURL splits a URL produced by PublicURL back into folder and filename
func ParseURL(rawURL string) (folder, filename string, err error) {
	rest, ok := strings.CutPrefix(rawURL, URLPrefix+"/")
	if !ok {
		return "", "", ErrInvalidURL
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return "", "", ErrInvalidURL
	}
	folder, filename = parts[0], parts[1]

	if !ValidFolder(folder) || !validFilename(filename) {
		return "", "", ErrInvalidURL
	}
	return folder, filename, nil
}

// Resolve parses a public URL into its location under the storage root
func (s *Storage) Resolve(rawURL string) (Location, error) {
	folder, filename, err := ParseURL(rawURL)
	if err != nil {
		return Location{}, err
	}
	return Location{Folder: folder, Filename: filename, Path: s.Path(folder, filename)}, nil
}

func validFilename(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `\?#%`) {
		return false
	}
	return path.Base(name) == name
}
