package upload

import (
	"context"
	"errors"
	"net/http"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Route describes the upload expected by one route
type Route struct {
	// Field is the multipart form field carrying the file
	Field string
	// Folder is the destination folder; ignored when FolderParam is set
	Folder string
	// FolderParam names the chi URL parameter holding the folder
	FolderParam string
	// Required rejects requests without a file; otherwise the pipeline is skipped
	Required bool
}

type contextKey string

const processedFileKey contextKey = "processedFile"

// WithFile returns a copy of ctx carrying file
func WithFile(ctx context.Context, file *ProcessedFile) context.Context {
	return context.WithValue(ctx, processedFileKey, file)
}

// FileFromContext returns the file stored by Middleware, if any
func FileFromContext(ctx context.Context) (*ProcessedFile, bool) {
	file, ok := ctx.Value(processedFileKey).(*ProcessedFile)
	return file, ok && file != nil
}

// Middleware runs the pipeline over the route's file field and attaches the stored file to the context
func Middleware(p *Pipeline, route Route, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			folder := route.Folder
			if route.FolderParam != "" {
				folder = chi.URLParam(r, route.FolderParam)
			}

			asset, err := Receive(r, route.Field, p.TempDir())
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					apperrors.Write(w, logger, apperrors.Upload(http.StatusRequestEntityTooLarge, p.sizeMessage()))
					return
				}
				logger.Warn("failed to receive upload", zap.String("field", route.Field), zap.Error(err))
				apperrors.Write(w, logger, apperrors.Upload(http.StatusBadRequest, "failed to read uploaded file"))
				return
			}

			// received
			if asset == nil {
				if route.Required {
					apperrors.Write(w, logger, apperrors.Upload(http.StatusBadRequest, "missing file: "+route.Field))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			file, err := p.Process(r.Context(), asset, folder)
			if err != nil {
				apperrors.Write(w, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithFile(r.Context(), file)))
		})
	}
}
