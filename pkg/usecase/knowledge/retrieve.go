package knowledge

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Retrieve embeds the query with the same embedder used at ingestion time
// and returns the texts of the topK most similar passages in descending
// similarity. An empty index yields an empty result.
func (u *UseCase) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 1
	}

	embedding, err := u.gemini.Embedding(ctx, query, u.dims)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	passages, err := u.repo.SearchSimilarPassages(ctx, embedding, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search passages")
	}

	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return texts, nil
}
