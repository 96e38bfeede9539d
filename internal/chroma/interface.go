package chroma

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks vaultsync/internal/chroma Collection,Client

import "context"

// GetResult is the response of a collection get call: parallel slices of
// document ids, bodies, and metadata maps.
type GetResult struct {
	IDs       []string         `json:"ids"`
	Documents []string         `json:"documents"`
	Metadatas []map[string]any `json:"metadatas"`
}

// Collection is the per-collection capability surface consumed by the
// ingestion and reconciliation engines.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Upsert inserts or replaces documents. The three slices are parallel.
	Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error

	// Delete removes documents by id.
	Delete(ctx context.Context, ids []string) error

	// Get fetches documents by id. A nil or empty ids slice returns the
	// full collection listing.
	Get(ctx context.Context, ids []string) (*GetResult, error)

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int, error)
}

// Client is the client-level capability surface of the remote store.
type Client interface {
	// ListCollections returns the names of all collections in the
	// configured tenant/database.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollection returns a handle to an existing collection.
	GetCollection(ctx context.Context, name string) (Collection, error)

	// CreateCollection creates a new collection and returns its handle.
	CreateCollection(ctx context.Context, name string) (Collection, error)

	// GetOrCreateCollection returns an existing collection, creating it
	// if it does not exist.
	GetOrCreateCollection(ctx context.Context, name string) (Collection, error)
}
