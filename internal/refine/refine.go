package refine

import (
	"context"

	"myansub/internal/subtitle"
)

// Refiner rewrites subtitle text while keeping ids and timings.
type Refiner interface {
	Refine(ctx context.Context, entries []subtitle.Entry) ([]subtitle.Entry, error)
}
