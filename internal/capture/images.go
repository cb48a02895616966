package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageStore keeps copies of captured images so records never point at
// files the user may move or delete.
type ImageStore struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// NewImageStore creates an ImageStore writing into dir.
func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir, now: time.Now, newID: uuid.NewString}
}

// Dir returns the directory images are copied into.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save copies src into the store as capture_<timestamp>_<uuid>.<ext> and
// returns the absolute path of the copy.
func (s *ImageStore) Save(src string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".png"
	}
	name := fmt.Sprintf("capture_%s_%s%s", s.now().Format("20060102_150405"), s.newID(), ext)
	dst := filepath.Join(s.dir, name)

	if err := copyFile(src, dst); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		return dst, nil
	}
	return abs, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create image copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy image: %w", err)
	}
	return nil
}
