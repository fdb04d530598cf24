package extractor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockingest/internal/extractor"
)

func TestNewRateLimitError_DefaultsRetryAfter(t *testing.T) {
	base := errors.New("429")

	err := extractor.NewRateLimitError("claude", base, 0)

	assert.Equal(t, time.Minute, err.RetryAfter)
	assert.Equal(t, "claude", err.Provider)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "claude unavailable")
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2015, 10, 21, 7, 28, 0, 0, time.UTC)

	tests := []struct {
		name string
		val  string
		want time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"negative", "-5", 0},
		{"http date", "Wed, 21 Oct 2015 07:28:45 GMT", 45 * time.Second},
		{"past date", "Wed, 21 Oct 2015 07:00:00 GMT", 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.RetryAfter(tt.val, now))
		})
	}
}
