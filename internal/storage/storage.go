// Package storage uploads user-supplied images to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Item types used as the first segment of an object key.
const (
	ItemUser = "users"
	ItemPost = "posts"
)

// ErrDisabled is returned by the uploader used when no bucket is
// configured.
var ErrDisabled = errors.New("object storage is not configured")

// File is one uploaded part of a multipart request.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores a file and returns its public location.
type Uploader interface {
	Upload(ctx context.Context, f File, itemType string, itemID uint) (string, error)
}

// MediaTypeError rejects a file whose content type is not an image.
type MediaTypeError struct{ Name string }

func (e *MediaTypeError) Error() string {
	return fmt.Sprintf("File %s unsupported media type", e.Name)
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// CheckImage accepts only the image content types listed in imageTypes.
func CheckImage(f File) error {
	ct := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !imageTypes[ct] {
		return &MediaTypeError{Name: f.Name}
	}
	return nil
}

// ObjectKey builds <itemType>/<itemID>/<uuid><ext>.  The random segment
// keeps re-uploads from overwriting each other.
func ObjectKey(itemType string, itemID uint, name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	return fmt.Sprintf("%s/%d/%s%s", itemType, itemID, uuid.NewString(), ext)
}

type disabledUploader struct{}

// Disabled returns an Uploader that validates the file and then fails
// with ErrDisabled.
func Disabled() Uploader { return disabledUploader{} }

func (disabledUploader) Upload(_ context.Context, f File, _ string, _ uint) (string, error) {
	if err := CheckImage(f); err != nil {
		return "", err
	}
	return "", ErrDisabled
}
