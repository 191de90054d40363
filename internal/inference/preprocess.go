package inference

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// InputSize is the square edge the model expects, in pixels.
const InputSize = 224

// Input is an image resized to InputSize x InputSize RGB.
type Input struct {
	Image *image.RGBA
}

// Preprocess decodes r and resizes it to the model input size.
func Preprocess(r io.Reader) (*Input, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &Input{Image: dst}, nil
}

// Tensor returns the pixels as [height][width][rgb] floats scaled to 0..1.
func (in *Input) Tensor() [][][]float32 {
	b := in.Image.Bounds()
	out := make([][][]float32, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := make([][]float32, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			c := in.Image.RGBAAt(b.Min.X+x, b.Min.Y+y)
			row[x] = []float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
		}
		out[y] = row
	}
	return out
}
