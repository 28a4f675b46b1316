package httpx

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
)

// File is an uploaded multipart file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ParseMultipart bounds the body to maxBytes and parses the multipart form.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Wrap(apperr.Validation, "file is too large", err)
		}
		return apperr.Wrap(apperr.Validation, "invalid multipart form", err)
	}
	return nil
}

// FormFile reads the named file field. It returns nil, nil when the field is absent.
func FormFile(r *http.Request, field string) (*File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "invalid file field", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "could not read uploaded file", err)
	}
	if len(data) == 0 {
		return nil, apperr.New(apperr.Validation, "uploaded file is empty")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &File{
		Name:        SafeFileName(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// SafeFileName strips directories and characters that do not belong in a blob path.
func SafeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
