package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// errMissingFile marks an absent multipart file field so callers can pick
// the right status for it.
var errMissingFile = errors.New("file is missing")

const maxUploadMemory = 32 << 20

// saveMultipartFile copies the named multipart field into dir under the
// uploaded filename and returns the local path. Concurrent uploads of the
// same filename overwrite each other; the upload keys in the media store
// stay unique regardless.
func saveMultipartFile(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errMissingFile
		}
		return "", fmt.Errorf("read multipart field %s: %w", field, err)
	}
	defer file.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}

	return path, nil
}
