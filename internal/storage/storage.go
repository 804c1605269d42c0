package storage

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidKey    = errors.New("invalid image key")
	ErrImageNotFound = errors.New("image not found")
)

// AllowedImageTypes are the content types served under /uploads.
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

// ImageKey cleans a requested image path ("/artisans/a.jpg") into a
// relative key. Paths escaping the root and non-image extensions are rejected.
func ImageKey(raw string) (string, error) {
	key := strings.TrimPrefix(path.Clean("/"+raw), "/")
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(path.Base(key), ".") {
		return "", ErrInvalidKey
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if err := ValidateContentType(contentType, AllowedImageTypes); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}
