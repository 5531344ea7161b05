package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes uploads to a local directory. Name collisions are
// resolved by prefixing an incrementing counter, so an existing file is
// never overwritten.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save writes the upload and returns the public path stored on the media
// row (e.g. "/media/1_image.jpg").
func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	dest := filepath.Join(s.dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%d_%s", i, filepath.Base(filename))
		dest = filepath.Join(s.dir, name)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Dir returns the directory uploads are written to, for static serving.
func (s *DiskStore) Dir() string {
	return s.dir
}
