package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned for image sources outside the asset directory.
var ErrNotFound = errors.New("asset not found")

// Loader resolves image sources for scene images. It understands stored
// asset URLs ("/assets/<id>.png"), bare file names inside the asset
// directory and base64 data URLs. Decoded images are cached by source.
type Loader struct {
	dir string

	mu    sync.Mutex
	cache map[string]image.Image
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, cache: make(map[string]image.Image)}
}

// LoadImage implements scene.ImageLoader.
func (l *Loader) LoadImage(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	img, ok := l.cache[src]
	l.mu.Unlock()
	if ok {
		return img, nil
	}

	var data []byte
	var err error
	if strings.HasPrefix(src, "data:") {
		data, err = decodeDataURL(src)
	} else {
		data, err = l.readFile(src)
	}
	if err != nil {
		return nil, err
	}

	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", truncate(src), err)
	}

	l.mu.Lock()
	l.cache[src] = img
	l.mu.Unlock()
	return img, nil
}

func (l *Loader) readFile(src string) ([]byte, error) {
	name := strings.TrimPrefix(src, "/assets/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
	}
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}

func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data url %s", truncate(src))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return data, nil
}

func truncate(s string) string {
	if len(s) > 48 {
		return s[:48] + "..."
	}
	return s
}
