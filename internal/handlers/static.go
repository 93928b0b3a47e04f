package handlers

import (
	"net/http"
	"os"

	"github.com/churchsite/backend/internal/upload"
)

// filesOnly hides directories so the file server never lists them
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

// StaticUploads serves stored files under /uploads from root
func StaticUploads(root string) http.Handler {
	files := http.FileServer(filesOnly{fs: http.Dir(root)})
	return http.StripPrefix(upload.URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	}))
}
