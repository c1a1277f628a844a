package repository

import (
	"context"
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/model"
)

// Memory is an in-memory passage index using brute-force cosine similarity.
// It backs tests and sessions running without GCP credentials.
type Memory struct {
	passages map[string]*model.Passage
}

func NewMemory() *Memory {
	return &Memory{
		passages: make(map[string]*model.Passage),
	}
}

func (m *Memory) PutPassage(ctx context.Context, passage *model.Passage) error {
	if passage.ID == "" {
		return goerr.New("passage id is empty")
	}
	m.passages[passage.ID] = passage
	return nil
}

func (m *Memory) HasPassage(ctx context.Context, id string) (bool, error) {
	_, ok := m.passages[id]
	return ok, nil
}

func (m *Memory) SearchSimilarPassages(ctx context.Context, embedding []float32, limit int) ([]*model.Passage, error) {
	if limit <= 0 {
		limit = 1
	}

	type scored struct {
		passage *model.Passage
		score   float64
	}

	results := make([]scored, 0, len(m.passages))
	for _, p := range m.passages {
		results = append(results, scored{passage: p, score: cosineSimilarity(p.Embedding, embedding)})
	}

	// Tie-break on id so repeated searches return the same order
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].passage.ID < results[j].passage.ID
	})

	if limit > len(results) {
		limit = len(results)
	}
	passages := make([]*model.Passage, 0, limit)
	for _, r := range results[:limit] {
		passages = append(passages, r.passage)
	}
	return passages, nil
}

// Len returns the number of stored passages
func (m *Memory) Len() int {
	return len(m.passages)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
