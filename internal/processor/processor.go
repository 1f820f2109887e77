package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	// Register the webp decoder; imaging itself covers jpeg, png, gif, bmp and tiff.
	_ "golang.org/x/image/webp"

	"github.com/fedotovm/imagestore/internal/model"
)

// DefaultQuality is the JPEG quality applied when compression was requested
// but no explicit quality was given.
const DefaultQuality = 85

// ErrDecode is returned when the uploaded bytes cannot be parsed as a raster
// image, regardless of the declared content type.
var ErrDecode = errors.New("image decode failed")

// Processor normalizes uploaded images to JPEG. Each call operates on its own
// buffer and returns a fresh result, so a single Processor is safe for
// concurrent use.
type Processor struct {
	maxDimension int
}

// New creates a Processor. maxDimension caps both output dimensions.
func New(maxDimension int) *Processor {
	return &Processor{maxDimension: maxDimension}
}

// Process runs the normalization pipeline: Decode -> [Convert] -> [Resize] -> Encode.
//
// Already-JPEG input with no quality/width/height supplied is returned
// unchanged. Otherwise the image is converted to an opaque RGB form when the
// source is not JPEG, resized to fit the requested bounding box while
// preserving aspect ratio, and encoded to JPEG. The returned Quality is the
// requested quality, DefaultQuality when any of the three parameters was
// supplied without an explicit quality, and nil when the encode happened only
// for format conversion (full-fidelity, quality 100).
func (p *Processor) Process(raw []byte, originalFormat string, quality, width, height *int) (model.ProcessedImage, error) {
	format := strings.ToLower(originalFormat)
	isJPEG := format == "jpeg" || format == "jpg"
	hasParams := quality != nil || width != nil || height != nil

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return model.ProcessedImage{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if isJPEG && !hasParams {
		b := img.Bounds()
		return model.ProcessedImage{Data: raw, Width: b.Dx(), Height: b.Dy()}, nil
	}

	// JPEG cannot carry alpha or palette data, so non-JPEG input is always
	// normalized to an opaque color model before resize and encode.
	if !isJPEG {
		img = flatten(img)
	}

	if width != nil || height != nil {
		img = p.resize(img, width, height)
	}

	encodeQuality := 100
	var applied *int
	if hasParams {
		encodeQuality = DefaultQuality
		if quality != nil {
			encodeQuality = *quality
		}
		applied = &encodeQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(encodeQuality)); err != nil {
		return model.ProcessedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	b := img.Bounds()
	return model.ProcessedImage{
		Data:    buf.Bytes(),
		Width:   b.Dx(),
		Height:  b.Dy(),
		Quality: applied,
	}, nil
}

// flatten composites alpha-capable or palette-indexed images onto an opaque
// white background using the image's own alpha channel as the blend mask.
// Opaque color models pass through and are converted by the JPEG encoder.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64, *image.Paletted:
		b := img.Bounds()
		bg := imaging.New(b.Dx(), b.Dy(), color.White)
		return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
	default:
		return img
	}
}

// resize computes the target box from the requested dimensions, deriving a
// missing side from the original aspect ratio, and scales the image down to
// fit within it. Scaling never upscales beyond the computed box.
func (p *Processor) resize(img image.Image, width, height *int) image.Image {
	b := img.Bounds()
	origW, origH := b.Dx(), b.Dy()

	var w, h int
	switch {
	case width != nil && height == nil:
		w = *width
		h = int(math.Round(float64(origH) * float64(*width) / float64(origW)))
	case height != nil && width == nil:
		h = *height
		w = int(math.Round(float64(origW) * float64(*height) / float64(origH)))
	default:
		w, h = *width, *height
	}

	// A derived side can exceed the ceiling even when the requested one passed
	// validation. It is capped silently, without re-deriving the ratio.
	if w > p.maxDimension {
		w = p.maxDimension
	}
	if h > p.maxDimension {
		h = p.maxDimension
	}

	return imaging.Fit(img, w, h, imaging.Lanczos)
}
