package extractor_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockingest/internal/extractor"
	"stockingest/internal/imageprep"
	"stockingest/internal/port"
	"stockingest/mocks"
)

func TestWithImagePreparation_ConvertsPhotos(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 10, 10))))
	next := new(mocks.MockInvoiceExtractor)
	next.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return in.ContentType == "image/jpeg" && len(in.FileBytes) > 0
	})).Return(fallbackOutput("claude"), nil)

	ex := extractor.WithImagePreparation(next, imageprep.DefaultOptions())
	_, err := ex.Extract(context.Background(), port.ExtractInput{FileBytes: buf.Bytes(), ContentType: "image/png"})

	require.NoError(t, err)
	next.AssertExpectations(t)
}

func TestWithImagePreparation_PassesThroughOnFailure(t *testing.T) {
	in := port.ExtractInput{FileBytes: []byte("broken"), ContentType: "image/jpeg"}
	next := new(mocks.MockInvoiceExtractor)
	next.On("Extract", mock.Anything, in).Return(fallbackOutput("claude"), nil)

	ex := extractor.WithImagePreparation(next, imageprep.DefaultOptions())
	out, err := ex.Extract(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "claude", out.ModelUsed)
}
