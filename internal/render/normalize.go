package render

import (
	"image"
	"image/color"

	"github.com/suyashkumar/dicom/pkg/frame"
)

// normalizeFrame maps a native pixel frame onto the full 0-255 display range
// with a linear min-max stretch computed over this image alone. Grayscale
// frames become *image.Gray; frames with three or more samples per pixel
// become *image.RGBA.
func normalizeFrame(native *frame.NativeFrame) image.Image {
	low, high := sampleRange(native)
	span := high - low
	if span == 0 {
		span = 1
	}
	scale := func(v int) uint8 {
		return uint8((v - low) * 255 / span)
	}

	rgb := len(native.Data) > 0 && len(native.Data[0]) >= 3
	if rgb {
		img := image.NewRGBA(image.Rect(0, 0, native.Cols, native.Rows))
		for i, samples := range native.Data {
			x, y := i%native.Cols, i/native.Cols
			img.SetRGBA(x, y, color.RGBA{
				R: scale(samples[0]),
				G: scale(samples[1]),
				B: scale(samples[2]),
				A: 255,
			})
		}
		return img
	}

	img := image.NewGray(image.Rect(0, 0, native.Cols, native.Rows))
	for i, samples := range native.Data {
		if len(samples) == 0 {
			continue
		}
		img.SetGray(i%native.Cols, i/native.Cols, color.Gray{Y: scale(samples[0])})
	}
	return img
}

func sampleRange(native *frame.NativeFrame) (int, int) {
	low, high := 0, 0
	first := true
	for _, samples := range native.Data {
		for _, v := range samples {
			if first {
				low, high = v, v
				first = false
				continue
			}
			if v < low {
				low = v
			}
			if v > high {
				high = v
			}
		}
	}
	return low, high
}
