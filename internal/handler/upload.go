package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sakif/vininote/internal/apperror"
)

// photoField is the multipart field carrying an uploaded photo.
const photoField = "photo"

// readPhoto reads the "photo" part of a multipart upload of at most
// maxBytes. The content type is sniffed from the bytes, not trusted from
// the client, and must be an image.
func readPhoto(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, _, err := r.FormFile(photoField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", nil, apperror.ValidationFailed(photoField, "photo is too large")
		}
		return "", nil, apperror.ValidationFailed(photoField, "photo is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, apperror.ValidationFailed(photoField, "photo could not be read")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, apperror.ValidationFailed(photoField, "photo must be an image")
	}
	return contentType, data, nil
}
