package postedids

import (
	"context"
)

const DocumentName = "posted"

// Limits bound the posted-id window. Once the set grows past Max it is cut
// down to the Keep most recently marked ids.
type Limits struct {
	Max  int
	Keep int
}

func DefaultLimits() Limits {
	return Limits{Max: 5000, Keep: 3000}
}

// Repository is the set of offer ids delivered at least once.
type Repository interface {
	Contains(id string) bool
	// Mark records a successful delivery and persists the set.
	Mark(ctx context.Context, id string) error
	Len() int
}
