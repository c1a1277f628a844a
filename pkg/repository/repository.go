package repository

import (
	"context"

	"github.com/sarops/medkit/pkg/model"
)

// Repository defines the interface for passage index persistence
type Repository interface {
	// PutPassage stores a passage. Callers check HasPassage first: an id is
	// never overwritten during normal ingestion.
	PutPassage(ctx context.Context, passage *model.Passage) error

	// HasPassage reports whether a passage with the given id already exists
	HasPassage(ctx context.Context, id string) (bool, error)

	// SearchSimilarPassages performs vector search and returns passages in
	// descending similarity to the query embedding. An empty index yields an
	// empty result, not an error.
	SearchSimilarPassages(ctx context.Context, embedding []float32, limit int) ([]*model.Passage, error)
}
