package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// GeneratePublicID names an uploaded file: the owner prefix, a random UUID and the
// sanitised base name without extension.
func GeneratePublicID(prefix, filename string) string {
	id := prefix + "-" + uuid.NewString()

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." || base == "/" {
		return id
	}
	return id + "-" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
}
