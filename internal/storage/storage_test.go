package storage

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/iliyamo/postboard-api/internal/config"
)

func TestCheckImage(t *testing.T) {
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"IMAGE/GIF", true},
		{"image/webp; charset=binary", true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			err := CheckImage(File{Name: "cat.bin", ContentType: tt.contentType})
			if tt.ok && err != nil {
				t.Fatalf("CheckImage() error = %v", err)
			}
			if !tt.ok {
				var mt *MediaTypeError
				if !errors.As(err, &mt) {
					t.Fatalf("CheckImage() error = %v, want MediaTypeError", err)
				}
				if err.Error() != "File cat.bin unsupported media type" {
					t.Fatalf("message = %q", err.Error())
				}
			}
		})
	}
}

var keyPattern = regexp.MustCompile(`^posts/42/[0-9a-f-]{36}\.png$`)

func TestObjectKey(t *testing.T) {
	a := ObjectKey(ItemPost, 42, "../Holiday.PNG")
	b := ObjectKey(ItemPost, 42, "../Holiday.PNG")
	if !keyPattern.MatchString(a) {
		t.Fatalf("key %q does not match %s", a, keyPattern)
	}
	if a == b {
		t.Fatal("keys should be unique per upload")
	}
	if k := ObjectKey(ItemUser, 1, "noext"); !strings.HasPrefix(k, "users/1/") || strings.Contains(k, ".") {
		t.Fatalf("key without extension = %q", k)
	}
}

func TestDisabledUploader(t *testing.T) {
	u, err := New(context.Background(), config.S3Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = u.Upload(context.Background(), File{Name: "a.png", ContentType: "image/png"}, ItemUser, 1)
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Upload() error = %v, want ErrDisabled", err)
	}
	_, err = u.Upload(context.Background(), File{Name: "a.txt", ContentType: "text/plain"}, ItemUser, 1)
	var mt *MediaTypeError
	if !errors.As(err, &mt) {
		t.Fatalf("Upload() error = %v, want MediaTypeError", err)
	}
}
