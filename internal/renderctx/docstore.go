package renderctx

import (
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/veneer/internal/identity"
	"github.com/conneroisu/veneer/internal/resolver"
	"github.com/conneroisu/veneer/internal/store"
)

// IDTypeParam is the query parameter appended to item links whose native
// identifier is not the store's default identifier type.
const IDTypeParam = "id_type"

// Item is one top-level entry of a listing, tagged with the identifier
// metadata link-building needs.
type Item struct {
	// ID is the canonical string form of the identifier.
	ID string

	// IDType tags the native identifier kind, sufficient to reconstruct
	// a correctly typed reference.
	IDType string

	// NeedsParam is false only for the store's default identifier type;
	// links for every other kind must carry the typed-identifier query
	// parameter.
	NeedsParam bool

	// Link is the ready-built reference to the item.
	Link string

	// Fields is the normalized document body.
	Fields map[string]any
}

// Tenancy configures multi-tenant partition filtering.
type Tenancy struct {
	// Enabled turns on tenant resolution from the addressing context.
	Enabled bool

	// Protected are system partitions every tenant may see in top-level
	// listings.
	Protected []string
}

// Roles with write permissions on the store.
const (
	roleAdmin  = "admin"
	roleWriter = "writer"
)

// DocStoreBuilder is the priority strategy for responses originating
// from the structured document store. It normalizes native value types,
// tags items with identifier metadata, computes pagination, and resolves
// multi-tenant context.
type DocStoreBuilder struct {
	client          store.Client
	tenancy         Tenancy
	defaultPageSize int
	titleCaser      cases.Caser
}

// NewDocStoreBuilder creates the document-store strategy.
func NewDocStoreBuilder(client store.Client, tenancy Tenancy, defaultPageSize int) *DocStoreBuilder {
	if defaultPageSize <= 0 {
		defaultPageSize = 25
	}

	return &DocStoreBuilder{
		client:          client,
		tenancy:         tenancy,
		defaultPageSize: defaultPageSize,
		titleCaser:      cases.Title(language.English),
	}
}

// CanHandle claims responses carrying a native store payload.
func (b *DocStoreBuilder) CanHandle(res *Response) bool {
	return res.Result != nil
}

// Build produces the document-store rendering context. Count queries may
// block; failures propagate to the caller and surface as render
// failures, leaving the original response untouched.
func (b *DocStoreBuilder) Build(r *http.Request, res *Response) (map[string]any, error) {
	result := res.Result
	addr := result.Address
	id := identity.FromContext(r.Context())

	items := b.buildItems(result)
	if b.tenancy.Enabled && addr.IsPartitionListing() {
		items = b.filterTenantItems(items, id)
	}

	pageSize := result.Query.PageSize
	if pageSize <= 0 {
		pageSize = b.defaultPageSize
	}
	page := result.Query.Page
	if page < 1 {
		page = 1
	}

	total, err := b.totalCount(r, addr, result.Query)
	if err != nil {
		return nil, err
	}

	ctx := map[string]any{
		"items":       items,
		"page":        page,
		"pageSize":    pageSize,
		"totalCount":  total,
		"totalPages":  totalPages(total, pageSize),
		"filter":      result.Query.Filter,
		"sort":        result.Query.Sort,
		"keys":        result.Query.Keys,
		"canCreate":   canCreate(addr.Kind(), id),
		"canDelete":   canDelete(addr.Kind(), id),
		"title":       b.title(addr),
		"multiTenant": b.tenancy.Enabled,
	}

	if b.tenancy.Enabled {
		ctx["tenant"] = tenantOf(addr, id)
	} else {
		ctx["tenant"] = ""
	}

	return ctx, nil
}

// buildItems normalizes each document and tags it with identifier-type
// metadata.
func (b *DocStoreBuilder) buildItems(result *store.Result) []Item {
	base := result.Address.Normalized()
	items := make([]Item, 0, len(result.Documents))

	for _, doc := range result.Documents {
		rawID := doc[store.IDField]
		kind := store.KindOfID(rawID)
		canonical := store.FormatID(rawID)

		item := Item{
			ID:         canonical,
			IDType:     string(kind),
			NeedsParam: kind != store.DefaultIDKind,
			Link:       itemLink(base, canonical, kind),
			Fields:     NormalizeDocument(doc),
		}
		items = append(items, item)
	}

	return items
}

// itemLink builds a reference to one item, appending the typed-identifier
// query parameter only when the identifier is not the default kind.
func itemLink(base, id string, kind store.IDKind) string {
	link := "/" + id
	if base != "" {
		link = "/" + base + link
	}
	link = strings.ReplaceAll(link, " ", "%20")

	if kind != store.DefaultIDKind {
		link += "?" + IDTypeParam + "=" + url.QueryEscape(string(kind))
	}

	return link
}

// filterTenantItems restricts a top-level partition listing to the
// caller's own tenant plus the protected system entries. Only partition
// listings are filtered; deeper listings are already tenant-scoped by
// their address.
func (b *DocStoreBuilder) filterTenantItems(items []Item, id *identity.Identity) []Item {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if slices.Contains(b.tenancy.Protected, item.ID) {
			kept = append(kept, item)
			continue
		}
		if id != nil && id.Tenant == item.ID {
			kept = append(kept, item)
		}
	}

	return kept
}

// totalCount selects the counting strategy: an exact count when a filter
// is active, a direct sub-collection count for listings of containers,
// and a fast estimate for unfiltered document listings.
func (b *DocStoreBuilder) totalCount(r *http.Request, addr store.Address, q store.Query) (int64, error) {
	ctx := r.Context()

	switch {
	case addr.IsPartitionListing():
		partitions, err := b.client.Partitions(ctx)
		if err != nil {
			return 0, err
		}
		return int64(len(partitions)), nil

	case addr.IsCollectionListing():
		return b.client.CountCollections(ctx, addr.Partition)

	case q.Filtered():
		return b.client.CountExact(ctx, addr.Partition, addr.Collection, q.Filter)

	default:
		return b.client.CountEstimate(ctx, addr.Partition, addr.Collection)
	}
}

func (b *DocStoreBuilder) title(addr store.Address) string {
	switch {
	case addr.Collection != "":
		return b.titleCaser.String(strings.ReplaceAll(addr.Collection, "-", " "))
	case addr.Partition != "":
		return b.titleCaser.String(strings.ReplaceAll(addr.Partition, "-", " "))
	default:
		return "Home"
	}
}

// totalPages computes max(1, ceil(total/pageSize)).
func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 1
	}

	pages := int64(math.Ceil(float64(total) / float64(pageSize)))
	if pages < 1 {
		return 1
	}

	return pages
}

func tenantOf(addr store.Address, id *identity.Identity) string {
	if tenant := addr.Tenant(); tenant != "" {
		return tenant
	}
	if id != nil {
		return id.Tenant
	}

	return ""
}

func canCreate(kind resolver.Kind, id *identity.Identity) bool {
	if kind == resolver.KindItem {
		// Items are created through their container, not themselves.
		return false
	}

	return id.HasRole(roleAdmin) || id.HasRole(roleWriter)
}

func canDelete(kind resolver.Kind, id *identity.Identity) bool {
	if kind == resolver.KindRoot {
		return false
	}

	return id.HasRole(roleAdmin)
}
