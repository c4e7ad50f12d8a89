package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/conneroisu/veneer/internal/config"
	"github.com/conneroisu/veneer/internal/errors"
	"github.com/conneroisu/veneer/internal/logging"
	"github.com/conneroisu/veneer/internal/renderctx"
	"github.com/conneroisu/veneer/internal/store"
)

// apiHandler is the JSON surface over the document store. It is the
// "underlying API" the negotiation layer wraps: its responses must stay
// byte-identical for clients that never asked for HTML, so it knows
// nothing about templates or rendering. Its only concession to the
// layer above is filling the context carrier with the native payload.
type apiHandler struct {
	client store.Client
	cfg    config.StoreConfig
	logger logging.Logger
}

func newAPIHandler(client store.Client, cfg config.StoreConfig, logger logging.Logger) *apiHandler {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	return &apiHandler{
		client: client,
		cfg:    cfg,
		logger: logger.WithComponent("api"),
	}
}

func (h *apiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	addr := store.ParseAddress(r.URL.Path)
	if addr.Malformed() {
		writeError(w, http.StatusNotFound, "no such resource")
		return
	}

	switch {
	case addr.IsPartitionListing():
		h.listNames(w, r, addr, func() ([]string, error) {
			return h.client.Partitions(r.Context())
		})

	case addr.IsCollectionListing():
		h.listNames(w, r, addr, func() ([]string, error) {
			return h.client.Collections(r.Context(), addr.Partition)
		})

	case addr.ItemID == "":
		h.listDocuments(w, r, addr)

	default:
		h.getDocument(w, r, addr)
	}
}

// listNames serves partition and collection listings. Names are exposed
// as documents keyed by the canonical identifier field so the same
// listing machinery applies at every level.
func (h *apiHandler) listNames(w http.ResponseWriter, r *http.Request, addr store.Address, fetch func() ([]string, error)) {
	names, err := fetch()
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	docs := make([]store.Document, 0, len(names))
	for _, name := range names {
		docs = append(docs, store.Document{store.IDField: name})
	}

	h.deliver(w, r, addr, h.parseQuery(r), docs, true)
}

func (h *apiHandler) listDocuments(w http.ResponseWriter, r *http.Request, addr store.Address) {
	q := h.parseQuery(r)

	docs, err := h.client.List(r.Context(), addr.Partition, addr.Collection, q)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	h.deliver(w, r, addr, q, docs, true)
}

func (h *apiHandler) getDocument(w http.ResponseWriter, r *http.Request, addr store.Address) {
	doc, found, err := h.client.Get(r.Context(), addr.Partition, addr.Collection, addr.ItemID)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no such document")
		return
	}

	h.deliver(w, r, addr, store.Query{}, []store.Document{doc}, false)
}

// deliver hands the native payload to the negotiation layer through the
// context carrier, then writes the plain JSON body.
func (h *apiHandler) deliver(w http.ResponseWriter, r *http.Request, addr store.Address, q store.Query, docs []store.Document, listing bool) {
	if carrier := renderctx.CarrierFrom(r.Context()); carrier != nil {
		carrier.Result = &store.Result{Address: addr, Query: q, Documents: docs}
	}

	normalized := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		normalized = append(normalized, renderctx.NormalizeDocument(doc))
	}

	w.Header().Set("Content-Type", "application/json")

	var payload any
	if listing {
		payload = map[string]any{"items": normalized, "count": len(normalized)}
	} else {
		payload = normalized[0]
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn(r.Context(), err, "encoding response", "path", r.URL.Path)
	}
}

// parseQuery extracts listing parameters. The page size is clamped to
// the configured maximum; zero and negative values fall back to the
// default.
func (h *apiHandler) parseQuery(r *http.Request) store.Query {
	values := r.URL.Query()

	page, _ := strconv.Atoi(values.Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(values.Get("page_size"))
	if pageSize <= 0 {
		pageSize = h.cfg.PageSize
	}
	if h.cfg.MaxPageSize > 0 && pageSize > h.cfg.MaxPageSize {
		pageSize = h.cfg.MaxPageSize
	}

	return store.Query{
		Filter:   values.Get("filter"),
		Sort:     values.Get("sort"),
		Keys:     values.Get("keys"),
		Page:     page,
		PageSize: pageSize,
	}
}

func (h *apiHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.IsStoreError(err) {
		// Store errors at this surface are bad client input (malformed
		// filters), not backend failures.
		status = http.StatusBadRequest
	}

	h.logger.Warn(r.Context(), err, "store operation failed", "path", r.URL.Path)
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
