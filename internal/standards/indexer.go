package standards

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/schema"

	"github.com/sevigo/review-warden/internal/storage"
)

// Indexer writes standards into a vector store collection.
type Indexer struct {
	store      storage.VectorStore
	collection string
	chunkChars int
	logger     *slog.Logger
}

// NewIndexer returns an Indexer for collection.
func NewIndexer(store storage.VectorStore, collection string, logger *slog.Logger) *Indexer {
	return &Indexer{
		store:      store,
		collection: collection,
		chunkChars: DefaultChunkChars,
		logger:     logger,
	}
}

// IndexResult summarizes an indexing run.
type IndexResult struct {
	Standards int
	Documents int
}

// Index stores every standard. With recreate the collection is dropped first,
// so removed standards do not linger.
func (ix *Indexer) Index(ctx context.Context, stds []Standard, recreate bool) (IndexResult, error) {
	if recreate {
		if err := ix.store.DeleteCollection(ctx, ix.collection); err != nil {
			// A missing collection is the common case on first run.
			ix.logger.Warn("could not drop collection before reindexing", "collection", ix.collection, "error", err)
		}
	}

	var docs []schema.Document
	for _, s := range stds {
		docs = append(docs, s.Documents(ix.chunkChars)...)
	}
	if len(docs) == 0 {
		return IndexResult{}, nil
	}

	ids, err := ix.store.AddDocuments(ctx, ix.collection, docs)
	if err != nil {
		return IndexResult{}, fmt.Errorf("failed to index standards: %w", err)
	}

	ix.logger.Info("standards indexed",
		"collection", ix.collection,
		"standards", len(stds),
		"documents", len(ids),
	)
	return IndexResult{Standards: len(stds), Documents: len(docs)}, nil
}
