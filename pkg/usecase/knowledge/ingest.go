package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sarops/medkit/pkg/adapter"
	"github.com/sarops/medkit/pkg/model"
	"github.com/sarops/medkit/pkg/utils/logging"
)

const (
	// Chunks are offset-based byte windows: 500-byte window advancing by
	// 100 bytes, so adjacent chunks overlap by 400 bytes. The last chunk
	// may be shorter than the window.
	chunkWindow = 500
	chunkStride = 100
)

// chunkText splits text into overlapping offset-based chunks
func chunkText(text string) []string {
	var chunks []string
	for i := 0; i < len(text); i += chunkStride {
		end := i + chunkWindow
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// Ingest splits a document into passages, embeds them and stores them under
// ids "{sourceID}-{index}". Re-ingesting the same source is idempotent:
// passages whose id already exists are skipped without re-embedding. Empty
// text is a no-op. Returns the number of newly stored passages.
func (u *UseCase) Ingest(ctx context.Context, text, sourceID string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	logger := logging.From(ctx)
	stored := 0

	for i, chunk := range chunkText(text) {
		id := model.PassageID(sourceID, i)

		exists, err := u.repo.HasPassage(ctx, id)
		if err != nil {
			return stored, goerr.Wrap(err, "failed to check passage", goerr.V("id", id))
		}
		if exists {
			continue
		}

		embedding, err := u.gemini.Embedding(ctx, chunk, u.dims)
		if err != nil {
			return stored, goerr.Wrap(err, "failed to embed passage", goerr.V("id", id))
		}

		if err := u.repo.PutPassage(ctx, &model.Passage{
			ID:        id,
			SourceID:  sourceID,
			Text:      chunk,
			Embedding: embedding,
		}); err != nil {
			return stored, goerr.Wrap(err, "failed to store passage", goerr.V("id", id))
		}
		stored++
	}

	logger.Info("ingested document", "source", sourceID, "new_passages", stored)
	return stored, nil
}

// IngestDir walks a directory and ingests every .pdf, .txt and .md document
// not yet marked done in the manifest. The manifest is rewritten after each
// successfully ingested document so an interrupted run resumes where it
// stopped.
func (u *UseCase) IngestDir(ctx context.Context, dir, manifestPath string) error {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	logger := logging.From(ctx)

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".txt", ".md":
		default:
			return nil
		}

		name := filepath.Base(path)
		if manifest[name] {
			logger.Debug("skipping processed document", "name", name)
			return nil
		}

		text, err := adapter.ExtractText(path)
		if err != nil {
			return goerr.Wrap(err, "failed to extract document", goerr.V("path", path))
		}

		if _, err := u.Ingest(ctx, text, name); err != nil {
			return goerr.Wrap(err, "failed to ingest document", goerr.V("path", path))
		}

		manifest[name] = true
		if err := SaveManifest(manifestPath, manifest); err != nil {
			return err
		}
		return nil
	})
}
