package blob

import (
	memorystore "fmeacore/internal/infra/blob/memory"
)

// NewMemory returns a store that keeps artifacts in process memory.
func NewMemory() Store { return memorystore.New() }
