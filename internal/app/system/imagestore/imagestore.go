// Package imagestore keeps uploaded cover images on local disk.
package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnsupportedType is returned when the upload is not a recognised image.
var ErrUnsupportedType = errors.New("unsupported image type")

// ErrTooLarge is returned when the upload exceeds the configured limit.
var ErrTooLarge = errors.New("image too large")

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store writes images under Dir and exposes them under URLPrefix.
type Store struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
	Log       *zap.Logger
}

// Saved describes a stored image.
type Saved struct {
	Path string // absolute file path on disk
	URL  string // public path written into book.image
}

// New creates dir if missing.
func New(dir, urlPrefix string, maxBytes int64, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads/images"
	}
	return &Store{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		MaxBytes:  maxBytes,
		Log:       logger,
	}, nil
}

// Save sniffs the content type, then copies r to a uuid-named file.
func (s *Store) Save(r io.Reader) (Saved, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Saved{}, fmt.Errorf("read image: %w", err)
	}
	head = head[:n]

	ext, ok := extByType[http.DetectContentType(head)]
	if !ok {
		return Saved{}, ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	target := filepath.Join(s.Dir, name)

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Saved{}, fmt.Errorf("create image: %w", err)
	}

	src := io.MultiReader(bytes.NewReader(head), r)
	if s.MaxBytes > 0 {
		src = io.LimitReader(src, s.MaxBytes+1)
	}
	written, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && written > s.MaxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		s.Remove(target)
		if errors.Is(err, ErrTooLarge) {
			return Saved{}, err
		}
		return Saved{}, fmt.Errorf("write image: %w", err)
	}

	return Saved{Path: target, URL: path.Join(s.URLPrefix, name)}, nil
}

// Remove deletes a stored file. Failures are logged, never returned.
func (s *Store) Remove(p string) {
	if p == "" {
		return
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.Log.Warn("failed to remove uploaded image",
			zap.String("path", p),
			zap.Error(err))
	}
}

// PathForURL maps a public URL produced by Save back to its file, or "" if
// the URL does not belong to this store.
func (s *Store) PathForURL(u string) string {
	prefix := s.URLPrefix + "/"
	if !strings.HasPrefix(u, prefix) {
		return ""
	}
	name := strings.TrimPrefix(u, prefix)
	if name == "" || name != filepath.Base(name) {
		return ""
	}
	return filepath.Join(s.Dir, name)
}

// File is a stored image found on disk.
type File struct {
	Path    string
	URL     string
	ModTime time.Time
}

// Files lists the regular files in Dir.
func (s *Store) Files() ([]File, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("list upload dir: %w", err)
	}
	out := make([]File, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed since ReadDir
		}
		out = append(out, File{
			Path:    filepath.Join(s.Dir, e.Name()),
			URL:     path.Join(s.URLPrefix, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}
