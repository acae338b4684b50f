package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // png decode support
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	domainerrors "homeboard/contexts/marketplace/moderation-service/domain/errors"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored images.
const MaxDimension = 1280

// JPEGQuality is the compression quality for re-encoded output.
const JPEGQuality = 85

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// process sniffs the real MIME type from the bytes, decodes, downscales
// oversized images and re-encodes everything as JPEG. Every stored asset
// ends up in one predictable format regardless of what the client sent.
func process(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domainerrors.ErrAssetRejected)
	}
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("%w: unsupported format %s", domainerrors.ErrAssetRejected, detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrAssetRejected, err)
	}
	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resizes so neither dimension exceeds maxDim, preserving
// aspect ratio with Catmull-Rom interpolation.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// newRef returns a fresh reference per stored object. References are
// never content-addressed: attaching the same image twice is two refs.
func newRef() string {
	return uuid.NewString() + ".jpg"
}

// MemoryStore keeps asset binaries in process memory for tests and
// local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Store(_ context.Context, data []byte) (string, error) {
	processed, err := process(data)
	if err != nil {
		return "", err
	}
	ref := newRef()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref] = processed
	return ref, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[ref]; !exists {
		return domainerrors.ErrAssetNotFound
	}
	delete(s.objects, ref)
	return nil
}

func (s *MemoryStore) Open(_ context.Context, ref string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.objects[ref]
	if !exists {
		return nil, "", domainerrors.ErrAssetNotFound
	}
	return append([]byte(nil), data...), "image/jpeg", nil
}

// FSStore persists asset binaries under a directory, one file per ref.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("asset directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating asset directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Store(_ context.Context, data []byte) (string, error) {
	processed, err := process(data)
	if err != nil {
		return "", err
	}
	ref := newRef()
	if err := os.WriteFile(filepath.Join(s.dir, ref), processed, 0o644); err != nil {
		return "", fmt.Errorf("writing asset: %w", err)
	}
	return ref, nil
}

func (s *FSStore) Delete(_ context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if errors.Is(err, os.ErrNotExist) {
		return domainerrors.ErrAssetNotFound
	}
	return err
}

func (s *FSStore) Open(_ context.Context, ref string) ([]byte, string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", domainerrors.ErrAssetNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return data, "image/jpeg", nil
}
