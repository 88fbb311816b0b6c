// Package storage holds the persistence backends: the Qdrant vector store used
// for coding standards and the Postgres review log.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sevigo/goframe/embeddings"
	"github.com/sevigo/goframe/schema"
	"github.com/sevigo/goframe/vectorstores"
	"github.com/sevigo/goframe/vectorstores/qdrant"
)

// VectorStore is the subset of vector database operations the standards index
// needs. Every call names its collection.
type VectorStore interface {
	// AddDocuments embeds and stores documents, returning their ids.
	AddDocuments(ctx context.Context, collection string, docs []schema.Document) ([]string, error)

	// SimilaritySearch returns up to numDocs documents closest to query.
	SimilaritySearch(ctx context.Context, collection, query string, numDocs int) ([]schema.Document, error)

	// DeleteCollection drops a collection and everything in it.
	DeleteCollection(ctx context.Context, collection string) error
}

type qdrantVectorStore struct {
	host     string
	embedder embeddings.Embedder
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[string]vectorstores.VectorStore
}

// NewQdrantVectorStore returns a VectorStore backed by the Qdrant instance at
// host (gRPC, e.g. "localhost:6334").
func NewQdrantVectorStore(host string, embedder embeddings.Embedder, logger *slog.Logger) VectorStore {
	return &qdrantVectorStore{
		host:     host,
		embedder: embedder,
		logger:   logger,
		stores:   make(map[string]vectorstores.VectorStore),
	}
}

func (q *qdrantVectorStore) collection(name string) (vectorstores.VectorStore, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.stores[name]; ok {
		return s, nil
	}

	s, err := qdrant.New(
		qdrant.WithHost(q.host),
		qdrant.WithEmbedder(q.embedder),
		qdrant.WithCollectionName(name),
		qdrant.WithLogger(q.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open qdrant collection %s: %w", name, err)
	}
	q.stores[name] = s
	return s, nil
}

func (q *qdrantVectorStore) AddDocuments(ctx context.Context, collection string, docs []schema.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	s, err := q.collection(collection)
	if err != nil {
		return nil, err
	}
	ids, err := s.AddDocuments(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to add %d documents to %s: %w", len(docs), collection, err)
	}
	q.logger.Debug("documents stored", "collection", collection, "count", len(ids))
	return ids, nil
}

func (q *qdrantVectorStore) SimilaritySearch(ctx context.Context, collection, query string, numDocs int) ([]schema.Document, error) {
	s, err := q.collection(collection)
	if err != nil {
		return nil, err
	}
	docs, err := s.SimilaritySearch(ctx, query, numDocs)
	if err != nil {
		return nil, fmt.Errorf("similarity search in %s failed: %w", collection, err)
	}
	return docs, nil
}

func (q *qdrantVectorStore) DeleteCollection(ctx context.Context, collection string) error {
	s, err := q.collection(collection)
	if err != nil {
		return err
	}
	if err := s.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}

	q.mu.Lock()
	delete(q.stores, collection)
	q.mu.Unlock()
	return nil
}
