package model

import (
	"fmt"

	"cloud.google.com/go/firestore"
)

// Passage is a chunk of a reference document stored in the knowledge index.
// Passages are immutable once stored: re-ingesting a source skips ids that
// already exist instead of overwriting them.
type Passage struct {
	ID        string
	SourceID  string
	Text      string
	Embedding firestore.Vector32
}

// PassageID builds the index key for the n-th chunk of a source document.
func PassageID(sourceID string, index int) string {
	return fmt.Sprintf("%s-%d", sourceID, index)
}
