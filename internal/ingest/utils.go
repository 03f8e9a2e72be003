package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/refund-checklist/constants"
)

// AllowedExt checks ext against allowed, or constants.AllowedExtensions
// when allowed is nil.
func AllowedExt(ext string, allowed map[string]struct{}) bool {
	if allowed == nil {
		allowed = constants.AllowedExtensions
	}
	_, ok := allowed[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
