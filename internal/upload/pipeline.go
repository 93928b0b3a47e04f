package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/metrics"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Upload outcomes reported to metrics
const (
	outcomeStored   = "stored"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// ProcessedFile is the result of a stored upload
type ProcessedFile struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	// MIMEType is the type of the stored bytes
	MIMEType string `json:"mimeType"`
	// OriginalMIMEType is the type sniffed from the uploaded bytes
	OriginalMIMEType string `json:"originalMimeType"`
	Size             int64  `json:"size"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
}

// Pipeline validates, transcodes and stores uploads
type Pipeline struct {
	storage  *Storage
	cfg      Config
	tempDir  string
	logger   *zap.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// NewPipeline creates a pipeline storing into storage. Zero fields of cfg take the defaults.
func NewPipeline(storage *Storage, cfg Config, tempDir string, logger *zap.Logger, recorder metrics.Recorder) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	return &Pipeline{
		storage:  storage,
		cfg:      cfg,
		tempDir:  tempDir,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}, nil
}

// With returns a pipeline sharing p's storage with a different configuration
func (p *Pipeline) With(cfg Config) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clone := *p
	clone.cfg = cfg
	return &clone, nil
}

// Config returns the effective configuration
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Storage returns the storage files are written to
func (p *Pipeline) Storage() *Storage {
	return p.storage
}

// TempDir returns the directory incoming files are received into
func (p *Pipeline) TempDir() string {
	return p.tempDir
}

// Process runs asset through validation and transcoding and stores it in folder.
// The asset's temporary file is removed on every return path.
func (p *Pipeline) Process(ctx context.Context, asset *Asset, folder string) (*ProcessedFile, error) {
	defer func() {
		if err := asset.Cleanup(); err != nil {
			p.logger.Warn("failed to remove temp upload", zap.String("path", asset.TempPath), zap.Error(err))
		}
	}()

	file, err := p.process(ctx, asset, folder)
	if err != nil {
		outcome := outcomeFailed
		if apperrors.IsKind(err, apperrors.KindUpload) || apperrors.IsKind(err, apperrors.KindProcessing) {
			outcome = outcomeRejected
		}
		p.recorder.RecordUpload(folder, outcome)
		p.logger.Warn("upload rejected",
			zap.String("folder", folder),
			zap.String("original_filename", asset.OriginalFilename),
			zap.String("declared_type", asset.DeclaredMIMEType),
			zap.Error(err),
		)
		return nil, err
	}

	p.recorder.RecordUpload(folder, outcomeStored)
	p.logger.Info("upload stored",
		zap.String("folder", file.Folder),
		zap.String("filename", file.Filename),
		zap.String("mime_type", file.MIMEType),
		zap.Int64("size", file.Size),
	)
	return file, nil
}

func (p *Pipeline) process(ctx context.Context, asset *Asset, folder string) (*ProcessedFile, error) {
	if !ValidFolder(folder) {
		return nil, apperrors.Upload(http.StatusBadRequest, "invalid upload folder")
	}

	// validated
	if !p.cfg.allowed(asset.DeclaredMIMEType) {
		return nil, apperrors.Upload(http.StatusBadRequest, p.typeMessage())
	}
	if asset.DeclaredSize > p.cfg.MaxSize {
		return nil, apperrors.Upload(http.StatusRequestEntityTooLarge, p.sizeMessage())
	}

	info, err := os.Stat(asset.TempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat temp upload: %w", err)
	}
	if info.Size() > p.cfg.MaxSize {
		return nil, apperrors.Upload(http.StatusRequestEntityTooLarge, p.sizeMessage())
	}

	sniffed, err := mimetype.DetectFile(asset.TempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	actual := sniffed.String()
	if !p.cfg.allowed(actual) {
		return nil, apperrors.Upload(http.StatusBadRequest, "file content is not an allowed image type")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("upload abandoned: %w", err)
	}

	if actual == "image/gif" {
		return p.storeAnimated(asset, folder)
	}
	return p.storeTranscoded(asset, folder, actual)
}

// storeAnimated copies a GIF unchanged so its frames survive
func (p *Pipeline) storeAnimated(asset *Asset, folder string) (*ProcessedFile, error) {
	src, err := os.Open(asset.TempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open temp upload: %w", err)
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, apperrors.Processing(err, "failed to process image")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind temp upload: %w", err)
	}

	filename := GenerateFileName(folder, mimeExtension["image/gif"], p.now())
	path, size, err := p.storage.Write(folder, filename, src)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &ProcessedFile{
		Folder:           folder,
		Filename:         filename,
		Path:             path,
		URL:              PublicURL(folder, filename),
		MIMEType:         "image/gif",
		OriginalMIMEType: "image/gif",
		Size:             size,
		Width:            cfg.Width,
		Height:           cfg.Height,
	}, nil
}

// storeTranscoded decodes, resizes and re-encodes a still image into the target format
func (p *Pipeline) storeTranscoded(asset *Asset, folder, originalType string) (*ProcessedFile, error) {
	src, err := os.Open(asset.TempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open temp upload: %w", err)
	}
	defer src.Close()

	decoded, _, err := image.Decode(src)
	if err != nil {
		return nil, apperrors.Processing(err, "failed to process image")
	}

	resized := resize(decoded, p.cfg.MaxWidth, p.cfg.MaxHeight)
	bounds := resized.Bounds()

	var buf bytes.Buffer
	if err := encode(&buf, resized, p.cfg.Format, p.cfg.Quality); err != nil {
		return nil, apperrors.Processing(err, "failed to process image")
	}

	targetType := formatMIME[p.cfg.Format]
	filename := GenerateFileName(folder, mimeExtension[targetType], p.now())
	path, size, err := p.storage.Write(folder, filename, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	return &ProcessedFile{
		Folder:           folder,
		Filename:         filename,
		Path:             path,
		URL:              PublicURL(folder, filename),
		MIMEType:         targetType,
		OriginalMIMEType: originalType,
		Size:             size,
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
	}, nil
}

func (p *Pipeline) typeMessage() string {
	return "invalid file type: only " + strings.Join(p.cfg.AllowedTypes, ", ") + " are allowed"
}

func (p *Pipeline) sizeMessage() string {
	return "file too large (max " + p.cfg.maxSizeLabel() + ")"
}
