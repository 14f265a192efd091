package service

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"socialboard/internal/domain"
)

// DefaultMaxUploadBytes is the largest accepted profile picture.
const DefaultMaxUploadBytes int64 = 1_000_000

var allowedImageExtensions = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/gif":  {},
}

// Upload is an uploaded file as declared by the client. Only the declared name and
// content type are checked; the bytes are not sniffed.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func validateUpload(u Upload, maxBytes int64) (string, error) {
	if u.Body == nil {
		return "", domain.ErrInvalidUpload
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return "", domain.ErrInvalidUpload
	}
	mediaType, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil {
		return "", domain.ErrInvalidUpload
	}
	if _, ok := allowedImageTypes[strings.ToLower(mediaType)]; !ok {
		return "", domain.ErrInvalidUpload
	}
	if u.Size > maxBytes {
		return "", domain.ErrUploadTooLarge
	}
	return ext, nil
}

func limitBody(u Upload, maxBytes int64) io.Reader {
	return io.LimitReader(u.Body, maxBytes)
}
