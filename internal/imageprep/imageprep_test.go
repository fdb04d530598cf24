package imageprep_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/imageprep"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepare_ResizesAndReencodesAsJPEG(t *testing.T) {
	data := pngBytes(t, 400, 200)

	out, ct, err := imageprep.Prepare(data, "image/png", imageprep.Options{MaxDimension: 100, Enhance: true})

	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestPrepare_SmallImageKeepsSize(t *testing.T) {
	data := pngBytes(t, 40, 30)

	out, _, err := imageprep.Prepare(data, "image/png", imageprep.DefaultOptions())

	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestPrepare_PDFPassesThrough(t *testing.T) {
	data := []byte("%PDF-1.4 fake")

	out, ct, err := imageprep.Prepare(data, "application/pdf", imageprep.DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
	assert.Equal(t, data, out)
}

func TestPrepare_CorruptImage(t *testing.T) {
	_, _, err := imageprep.Prepare([]byte("not an image"), "image/jpeg", imageprep.DefaultOptions())
	assert.Error(t, err)
}
