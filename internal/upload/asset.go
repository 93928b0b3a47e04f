package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// Asset is an incoming file copied to a temporary location.
// It is consumed by exactly one Pipeline.Process call, which removes the temporary file.
type Asset struct {
	TempPath         string
	OriginalFilename string
	DeclaredMIMEType string
	DeclaredSize     int64
}

// Cleanup removes the temporary file. It is safe to call more than once.
func (a *Asset) Cleanup() error {
	if a == nil || a.TempPath == "" {
		return nil
	}
	if err := os.Remove(a.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}
	return nil
}

// Receive copies the multipart file of field into tempDir.
// It returns a nil Asset and nil error when the request has no such file or is not multipart.
func Receive(r *http.Request, field, tempDir string) (*Asset, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read form file %s: %w", field, err)
	}
	defer file.Close()

	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	tmp, err := os.CreateTemp(tempDir, "upload-*"+filepath.Ext(filepath.Base(header.Filename)))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	asset := &Asset{
		TempPath:         tmp.Name(),
		OriginalFilename: header.Filename,
		DeclaredMIMEType: declaredType(header.Header.Get("Content-Type")),
		DeclaredSize:     header.Size,
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		asset.Cleanup()
		return nil, fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		asset.Cleanup()
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return asset, nil
}

func declaredType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mediaType
}
