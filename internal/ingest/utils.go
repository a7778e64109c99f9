package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

// AllowedExt reports whether ext maps to a supported document format.
func AllowedExt(ext string) bool {
	return constants.MapExtToFormat(ext) != constants.UNKNOWN
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
