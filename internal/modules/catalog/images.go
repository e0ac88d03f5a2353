package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidImageType is returned for uploads that aren't png or jpeg.
var ErrInvalidImageType = errors.New("invalid image type")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// ImageStore persists uploaded product images and returns the stored file name.
type ImageStore interface {
	Save(originalName, contentType string, r io.Reader) (string, error)
}

type diskImageStore struct {
	dir string
	now func() time.Time
}

// NewDiskImageStore writes images under dir, creating it if needed.
func NewDiskImageStore(dir string) (ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskImageStore{dir: dir, now: time.Now}, nil
}

func (s *diskImageStore) Save(originalName, contentType string, r io.Reader) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidImageType, contentType)
	}
	name := imageFileName(originalName, ext, s.now())

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	for n := 1; errors.Is(err, os.ErrExist) && n < 100; n++ {
		// Same name within the same millisecond, e.g. a gallery batch.
		name = strings.TrimSuffix(imageFileName(originalName, ext, s.now()), "."+ext) + fmt.Sprintf("-%d.%s", n, ext)
		f, err = os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// imageFileName builds "<name>-<unix ms>.<ext>" with spaces and path
// separators replaced so the result is safe to serve back out.
func imageFileName(original, ext string, now time.Time) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '-'
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%s-%d.%s", base, now.UnixMilli(), ext)
}
