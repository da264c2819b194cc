package media

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"portal/internal/platform/core"
)

const (
	// MaxPhotoSize bounds the longest side of a stored album photo.
	MaxPhotoSize = 1600
	// MaxSourcePixels rejects decompression bombs before decoding.
	MaxSourcePixels = 40_000_000
)

var (
	// ErrUnsupportedImage indicates the upload is not a decodable image.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrImageTooLarge indicates the source dimensions exceed MaxSourcePixels.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// StoredPhoto describes a photo written by SavePhoto.
type StoredPhoto struct {
	Filename string
	Width    int
	Height   int
}

// SavePhoto decodes an uploaded image, scales it to fit maxDim and writes it
// as PNG under dir with a random name.
func SavePhoto(src io.ReadSeeker, dir string, maxDim int) (StoredPhoto, error) {
	if maxDim <= 0 {
		maxDim = MaxPhotoSize
	}
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return StoredPhoto{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return StoredPhoto{}, ErrUnsupportedImage
	}
	if cfg.Width*cfg.Height > MaxSourcePixels {
		return StoredPhoto{}, ErrImageTooLarge
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return StoredPhoto{}, err
	}
	srcImg, _, err := image.Decode(src)
	if err != nil {
		return StoredPhoto{}, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	targetW, targetH := FitWithin(srcImg.Bounds().Dx(), srcImg.Bounds().Dy(), maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), srcImg, srcImg.Bounds(), draw.Over, nil)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return StoredPhoto{}, err
	}
	name := core.RandomToken(16) + ".png"
	tmp, err := os.CreateTemp(dir, "photo_*.tmp")
	if err != nil {
		return StoredPhoto{}, err
	}
	tmpPath := tmp.Name()
	if err := png.Encode(tmp, dst); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return StoredPhoto{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return StoredPhoto{}, err
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpPath)
		return StoredPhoto{}, err
	}
	return StoredPhoto{Filename: name, Width: targetW, Height: targetH}, nil
}

// FitWithin scales width x height down so neither side exceeds maxDim,
// keeping the aspect ratio.
func FitWithin(width, height, maxDim int) (int, int) {
	if width <= 0 || height <= 0 || maxDim <= 0 {
		return maxDim, maxDim
	}
	if width <= maxDim && height <= maxDim {
		return width, height
	}
	if width >= height {
		newW := maxDim
		newH := int(float64(height) * float64(maxDim) / float64(width))
		if newH < 1 {
			newH = 1
		}
		return newW, newH
	}
	newH := maxDim
	newW := int(float64(width) * float64(maxDim) / float64(height))
	if newW < 1 {
		newW = 1
	}
	return newW, newH
}
