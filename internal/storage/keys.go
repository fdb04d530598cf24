// Package storage holds helpers shared by object storage backends.
package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// IngestionImageKey is the object key of an uploaded invoice image.
func IngestionImageKey(establishmentID, ingestionID uuid.UUID, filename string) string {
	return fmt.Sprintf("establishments/%s/ingestions/%s/%s", establishmentID, ingestionID, SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name and replaces characters that are
// awkward in object keys.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "factura"
	}
	return out
}
