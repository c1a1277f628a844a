package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const passageCollection = "passages"

// Firestore implements Repository using Firestore with vector search
type Firestore struct {
	client *firestore.Client
}

type passageDoc struct {
	ID        string             `firestore:"id"`
	SourceID  string             `firestore:"source_id"`
	Text      string             `firestore:"text"`
	Embedding firestore.Vector32 `firestore:"embedding"`
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) PutPassage(ctx context.Context, passage *model.Passage) error {
	doc := passageDoc{
		ID:        passage.ID,
		SourceID:  passage.SourceID,
		Text:      passage.Text,
		Embedding: passage.Embedding,
	}

	if _, err := r.client.Collection(passageCollection).Doc(passage.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put passage", goerr.V("id", passage.ID))
	}
	return nil
}

func (r *Firestore) HasPassage(ctx context.Context, id string) (bool, error) {
	_, err := r.client.Collection(passageCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get passage", goerr.V("id", id))
	}
	return true, nil
}

func (r *Firestore) SearchSimilarPassages(ctx context.Context, embedding []float32, limit int) ([]*model.Passage, error) {
	if limit <= 0 {
		limit = 1
	}

	query := r.client.Collection(passageCollection).FindNearest(
		"embedding",
		firestore.Vector32(embedding),
		limit,
		firestore.DistanceMeasureCosine,
		nil,
	)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var passages []*model.Passage
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		var doc passageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode passage document")
		}
		passages = append(passages, &model.Passage{
			ID:        doc.ID,
			SourceID:  doc.SourceID,
			Text:      doc.Text,
			Embedding: doc.Embedding,
		})
	}

	return passages, nil
}

// Close releases the underlying Firestore client
func (r *Firestore) Close() error {
	return r.client.Close()
}
