package blob

import (
	"fmeacore/internal/infra/blob/fs"
)

// NewFilesystem returns a store keeping artifacts under root.
func NewFilesystem(root string) (Store, error) {
	s, err := fs.New(root)
	if err != nil {
		return nil, err
	}
	return s, nil
}
