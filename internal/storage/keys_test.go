package storage_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"stockingest/internal/storage"
)

func TestIngestionImageKey(t *testing.T) {
	est := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	ing := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	key := storage.IngestionImageKey(est, ing, "factura 001.jpg")

	assert.Equal(t, "establishments/11111111-1111-1111-1111-111111111111/ingestions/22222222-2222-2222-2222-222222222222/factura_001.jpg", key)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", storage.SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "foto.png", storage.SanitizeFilename(`C:\Users\caja\foto.png`))
	assert.Equal(t, "recibo_ni_o.jpg", storage.SanitizeFilename("recibo niño.jpg"))
	assert.Equal(t, "factura", storage.SanitizeFilename(".."))
	assert.Equal(t, "factura", storage.SanitizeFilename(""))
}
