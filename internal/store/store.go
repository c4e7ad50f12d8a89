package store

import "context"

// Query carries the listing parameters forwarded from the request.
type Query struct {
	// Filter, Sort and Keys are the raw query strings as received; the
	// store interprets them, the rendering context exposes them verbatim.
	Filter string
	Sort   string
	Keys   string

	// Page is 1-based. PageSize is the number of items per page.
	Page     int
	PageSize int
}

// Filtered reports whether an active filter constrains the listing.
func (q Query) Filtered() bool {
	return q.Filter != ""
}

// Result is the native payload an API response derived from the store
// carries alongside its serialized body. The document-store context
// builder claims responses holding one.
type Result struct {
	Address   Address
	Query     Query
	Documents []Document
}

// Client is the document store interface consumed by the pipeline.
//
// Count operations may perform blocking I/O; implementations must accept
// the request context and be safe for concurrent use.
type Client interface {
	// Partitions lists the top-level partitions.
	Partitions(ctx context.Context) ([]string, error)

	// Collections lists the collections of a partition.
	Collections(ctx context.Context, partition string) ([]string, error)

	// List returns one page of documents from a collection.
	List(ctx context.Context, partition, collection string, q Query) ([]Document, error)

	// Get fetches a single document by its canonical identifier string.
	// The boolean is false when no document matches.
	Get(ctx context.Context, partition, collection, id string) (Document, bool, error)

	// CountExact counts documents matching a filter. Used when a filter
	// is active and the page count must be precise.
	CountExact(ctx context.Context, partition, collection, filter string) (int64, error)

	// CountEstimate returns a fast, possibly approximate count of a
	// collection. Used for unfiltered listings.
	CountEstimate(ctx context.Context, partition, collection string) (int64, error)

	// CountCollections counts the collections of a partition. Used when
	// the listing addresses containers rather than documents.
	CountCollections(ctx context.Context, partition string) (int64, error)
}
