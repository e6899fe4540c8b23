package blob

import (
	"aquacore/internal/infra/blob/fs"
)

// NewFilesystem constructs a filesystem-backed blob.Store rooted at the
// provided path. The Store return type keeps call sites on the interface
// rather than the concrete driver.
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
