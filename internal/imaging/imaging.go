// Package imaging loads, resizes and encodes the rendered chart image.
package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/http"
	"os"

	"golang.org/x/image/draw"
)

var ErrImageNotFound = errors.New("image file not found")

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load decodes a PNG or JPEG file.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Resize scales src to exactly w x h with a Catmull-Rom kernel. The aspect
// ratio is not preserved.
func Resize(src image.Image, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

// LoadResized is Load followed by Resize.
func LoadResized(path string, w, h int) (image.Image, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Resize(img, w, h)
}

// EncodeFileBase64 returns the standard base64 encoding of the file at path
// together with its sniffed MIME type.
func EncodeFileBase64(path string) (string, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(b) == 0 {
		return "", "", fmt.Errorf("read %s: file is empty", path)
	}
	return base64.StdEncoding.EncodeToString(b), http.DetectContentType(b), nil
}

// DataURL builds a data: URL for an inline image.
func DataURL(mime, b64 string) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + b64
}
