package knowledge

import (
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/repository"
)

const defaultEmbeddingDims = 768

// UseCase bundles the document index and the retrieval service. Ingestion
// and retrieval share one embedder so stored and query vectors live in the
// same space.
type UseCase struct {
	repo   repository.Repository
	gemini adapter.Gemini
	dims   int
}

type Option func(*UseCase)

// WithEmbeddingDims overrides the embedding dimensionality
func WithEmbeddingDims(dims int) Option {
	return func(u *UseCase) {
		u.dims = dims
	}
}

func New(repo repository.Repository, gemini adapter.Gemini, opts ...Option) *UseCase {
	u := &UseCase{
		repo:   repo,
		gemini: gemini,
		dims:   defaultEmbeddingDims,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}
