package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

// Scan defaults for uploaded passport/ID photos.
const (
	ScanMaxWidth = 2400
	ScanQuality  = 88
)

// NormalizeJPEG upright-rotates a JPEG scan using its EXIF orientation, shrinks it to
// maxWidth (when > 0) and re-encodes it. Phone cameras store portrait shots sideways
// with an orientation tag that most document viewers ignore.
func NormalizeJPEG(input []byte, maxWidth int, quality int) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = ScanQuality
	}

	img, err := jpeg.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	ori := readEXIFOrientation(bytes.NewReader(input))
	if ori == 1 && (maxWidth <= 0 || img.Bounds().Dx() <= maxWidth) {
		return input, nil
	}

	img = applyOrientation(img, ori)
	if maxWidth > 0 {
		img = resizeMaxWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func readEXIFOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	ori, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return ori
}

// EXIF orientation: 2 mirror, 3 rotate 180, 4 flip, 5 transpose, 6 rotate 90 CW,
// 7 transverse, 8 rotate 90 CCW.
func applyOrientation(src image.Image, ori int) image.Image {
	switch ori {
	case 2:
		return transform(src, false, func(x, y, w, h int) (int, int) { return w - 1 - x, y })
	case 3:
		return transform(src, false, func(x, y, w, h int) (int, int) { return w - 1 - x, h - 1 - y })
	case 4:
		return transform(src, false, func(x, y, w, h int) (int, int) { return x, h - 1 - y })
	case 5:
		return transform(src, true, func(x, y, w, h int) (int, int) { return y, x })
	case 6:
		return transform(src, true, func(x, y, w, h int) (int, int) { return h - 1 - y, x })
	case 7:
		return transform(src, true, func(x, y, w, h int) (int, int) { return h - 1 - y, w - 1 - x })
	case 8:
		return transform(src, true, func(x, y, w, h int) (int, int) { return y, w - 1 - x })
	default:
		return src
	}
}

// transform copies src pixel by pixel through dst = f(x, y); swap exchanges width and height.
func transform(src image.Image, swap bool, f func(x, y, w, h int) (int, int)) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rect := image.Rect(0, 0, w, h)
	if swap {
		rect = image.Rect(0, 0, h, w)
	}
	dst := image.NewRGBA(rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := f(x, y, w, h)
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func resizeMaxWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	newH := int(math.Round(float64(h) * float64(maxW) / float64(w)))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
