// Package tensor describes the geometry of image and latent batches as
// sized objects for mathexpr.
package tensor

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/zephyrtronium/mathexpr"
)

// LatentChannels is the channel count of latents created by NewLatent.
const LatentChannels = 4

// Image is a batch of images. Shape is (batch, height, width, channels).
type Image struct {
	Shape []int
}

// Latent is a batch of latents. Samples is the shape of the samples tensor,
// (batch, channels, height, width), at 1/8 of the pixel size.
type Latent struct {
	Samples []int
}

var (
	_ mathexpr.SizedObject = Image{}
	_ mathexpr.SizedObject = Latent{}
)

// IsLatent returns false.
func (Image) IsLatent() bool { return false }

// RawSize returns the width and height of the images. An Image without a rank
// 4 shape, like the zero Image, has size 0x0.
func (im Image) RawSize() (width, height int) {
	if len(im.Shape) != 4 {
		return 0, 0
	}
	return im.Shape[2], im.Shape[1]
}

// IsLatent returns true.
func (Latent) IsLatent() bool { return true }

// RawSize returns the width and height of the samples, before scaling to
// pixels. A Latent without a rank 4 shape has size 0x0.
func (l Latent) RawSize() (width, height int) {
	if len(l.Samples) != 4 {
		return 0, 0
	}
	return l.Samples[3], l.Samples[2]
}

// NewImage creates a single RGB image with the given size in pixels.
func NewImage(width, height int) (Image, error) {
	return ImageShape(1, height, width, 3)
}

// ImageShape creates an image batch from its shape.
func ImageShape(shape ...int) (Image, error) {
	if err := checkShape("image", shape); err != nil {
		return Image{}, err
	}
	return Image{Shape: shape}, nil
}

// NewLatent creates a single latent for an image with the given size in
// pixels. Both dimensions must be multiples of 8.
func NewLatent(width, height int) (Latent, error) {
	if width%8 != 0 || height%8 != 0 {
		return Latent{}, errors.Errorf("latent size %dx%d is not a multiple of 8", width, height)
	}
	return LatentShape(1, LatentChannels, height/8, width/8)
}

// LatentShape creates a latent batch from the shape of its samples.
func LatentShape(samples ...int) (Latent, error) {
	if err := checkShape("latent", samples); err != nil {
		return Latent{}, err
	}
	return Latent{Samples: samples}, nil
}

func checkShape(kind string, shape []int) error {
	if len(shape) != 4 {
		return errors.Errorf("%s shape %v has rank %d, not 4", kind, shape, len(shape))
	}
	for _, d := range shape {
		if d <= 0 {
			return errors.Errorf("%s shape %v has a non-positive dimension", kind, shape)
		}
	}
	return nil
}

// Parse parses a sized object from a spec like "image:512x768" or
// "latent:1024x1024". Sizes are in pixels.
func Parse(spec string) (mathexpr.SizedObject, error) {
	kind, size, ok := strings.Cut(spec, ":")
	if !ok {
		return nil, errors.Errorf("sized object %q is not kind:WxH", spec)
	}
	ws, hs, ok := strings.Cut(size, "x")
	if !ok {
		return nil, errors.Errorf("size %q is not WxH", size)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return nil, errors.Wrapf(err, "bad width in %q", spec)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return nil, errors.Wrapf(err, "bad height in %q", spec)
	}
	switch kind {
	case "image":
		return NewImage(w, h)
	case "latent":
		return NewLatent(w, h)
	default:
		return nil, errors.Errorf("unknown sized object kind %q", kind)
	}
}

// ParseVar parses a slot value: an integer, a real number, or a sized object
// spec accepted by Parse.
func ParseVar(s string) (mathexpr.Var, error) {
	if strings.Contains(s, ":") {
		obj, err := Parse(s)
		if err != nil {
			return mathexpr.Var{}, err
		}
		return mathexpr.Sized(obj), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return mathexpr.Int(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return mathexpr.Var{}, errors.Wrapf(err, "bad number %q", s)
	}
	if math.IsNaN(f) {
		return mathexpr.Var{}, errors.Errorf("bad number %q", s)
	}
	return mathexpr.Number(f), nil
}
