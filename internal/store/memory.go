package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/conneroisu/veneer/internal/errors"
)

// Memory is an in-memory Client implementation. It backs development
// servers and tests; reads take the read lock so concurrent requests
// never contend unless a write is in flight.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]Document)}
}

// Put inserts a document into a collection, creating the partition and
// collection as needed.
func (m *Memory) Put(partition, collection string, doc Document) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[partition] == nil {
		m.data[partition] = make(map[string][]Document)
	}
	m.data[partition][collection] = append(m.data[partition][collection], doc)
}

// Partitions lists the top-level partitions in lexical order.
func (m *Memory) Partitions(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// Collections lists the collections of a partition in lexical order.
func (m *Memory) Collections(ctx context.Context, partition string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	collections := m.data[partition]
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// List returns one page of documents, applying filter, sort, projection
// and pagination in that order.
func (m *Memory) List(ctx context.Context, partition, collection string, q Query) ([]Document, error) {
	filter, err := parseFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]Document, 0, len(m.data[partition][collection]))
	for _, doc := range m.data[partition][collection] {
		if matchFilter(doc, filter) {
			matched = append(matched, doc)
		}
	}
	m.mu.RUnlock()

	sortDocuments(matched, q.Sort)
	matched = paginate(matched, q.Page, q.PageSize)

	if q.Keys != "" {
		projected := make([]Document, len(matched))
		for i, doc := range matched {
			projected[i] = project(doc, q.Keys)
		}
		matched = projected
	}

	return matched, nil
}

// Get fetches a document by its canonical identifier string.
func (m *Memory) Get(ctx context.Context, partition, collection, id string) (Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.data[partition][collection] {
		if FormatID(doc[IDField]) == id {
			return doc, true, nil
		}
	}

	return nil, false, nil
}

// CountExact counts documents matching a filter.
func (m *Memory) CountExact(ctx context.Context, partition, collection, rawFilter string) (int64, error) {
	filter, err := parseFilter(rawFilter)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, doc := range m.data[partition][collection] {
		if matchFilter(doc, filter) {
			count++
		}
	}

	return count, nil
}

// CountEstimate returns the collection size. In memory the estimate is
// exact, but callers must treat it as approximate.
func (m *Memory) CountEstimate(ctx context.Context, partition, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.data[partition][collection])), nil
}

// CountCollections counts the collections of a partition.
func (m *Memory) CountCollections(ctx context.Context, partition string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.data[partition])), nil
}

// parseFilter decodes the filter query string as a JSON object of
// field equality constraints. An invalid filter is a store error; the
// pipeline surfaces it as a render failure.
func parseFilter(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}

	var filter map[string]any
	if err := json.Unmarshal([]byte(raw), &filter); err != nil {
		return nil, errors.NewStoreError("invalid filter: "+raw, err)
	}

	return filter, nil
}

func matchFilter(doc Document, filter map[string]any) bool {
	for field, want := range filter {
		got, ok := doc[field]
		if !ok || !equalLoose(got, want) {
			return false
		}
	}

	return true
}

// equalLoose compares a native store value with a JSON-decoded filter
// value across numeric subtypes and wrapper types.
func equalLoose(got, want any) bool {
	return FormatID(got) == FormatID(want) || fmt.Sprintf("%v", got) == fmt.Sprintf("%v", want)
}

func sortDocuments(docs []Document, key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}

	descending := strings.HasPrefix(key, "-")
	field := strings.TrimPrefix(key, "-")

	sort.SliceStable(docs, func(i, j int) bool {
		a, b := FormatID(docs[i][field]), FormatID(docs[j][field])
		if descending {
			return a > b
		}
		return a < b
	})
}

func paginate(docs []Document, page, pageSize int) []Document {
	if pageSize <= 0 {
		return docs
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(docs) {
		return nil
	}

	end := start + pageSize
	if end > len(docs) {
		end = len(docs)
	}

	return docs[start:end]
}

func project(doc Document, keys string) Document {
	out := Document{IDField: doc[IDField]}
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if v, ok := doc[key]; ok {
			out[key] = v
		}
	}

	return out
}
