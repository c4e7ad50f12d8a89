package store

import (
	"strings"

	"github.com/conneroisu/veneer/internal/resolver"
)

// Address is the structural interpretation of a request path:
// /{partition}/{collection}/{item}, with any further segments recorded as
// structurally invalid extras.
type Address struct {
	// Raw is the request path as received.
	Raw string

	Partition  string
	Collection string
	ItemID     string

	// Extra holds trailing segments beyond the item level. A non-empty
	// Extra marks the address as malformed; the pipeline forces such
	// requests to behave as not-found regardless of the underlying
	// responder's status.
	Extra []string
}

// ParseAddress interprets a request path as a resource address.
func ParseAddress(path string) Address {
	addr := Address{Raw: path}

	normalized := resolver.Normalize(path)
	if normalized == "" {
		return addr
	}

	segments := strings.Split(normalized, "/")
	if len(segments) > 0 {
		addr.Partition = segments[0]
	}
	if len(segments) > 1 {
		addr.Collection = segments[1]
	}
	if len(segments) > 2 {
		addr.ItemID = segments[2]
	}
	if len(segments) > 3 {
		addr.Extra = segments[3:]
	}

	return addr
}

// Normalized returns the path with leading and trailing separators
// stripped; "" is the root.
func (a Address) Normalized() string {
	return resolver.Normalize(a.Raw)
}

// Kind classifies the addressed resource.
func (a Address) Kind() resolver.Kind {
	if a.reserved() {
		return resolver.KindOther
	}

	switch {
	case a.Partition == "":
		return resolver.KindRoot
	case a.Collection == "":
		return resolver.KindContainer
	case a.ItemID == "":
		return resolver.KindContainer
	default:
		return resolver.KindItem
	}
}

// Malformed reports whether the address carries structurally invalid
// extra trailing segments.
func (a Address) Malformed() bool {
	return len(a.Extra) > 0
}

// IsPartitionListing reports whether the address is the top-level listing
// of partitions. Tenant filtering applies only here.
func (a Address) IsPartitionListing() bool {
	return a.Partition == ""
}

// IsCollectionListing reports whether the address lists the collections
// of one partition.
func (a Address) IsCollectionListing() bool {
	return a.Partition != "" && a.Collection == ""
}

// Tenant returns the tenant token carried by the address. Partitions are
// the tenant boundary, so the token is the partition segment.
func (a Address) Tenant() string {
	return a.Partition
}

// reserved reports whether any segment is in the reserved underscore
// namespace (fragment directories, internal endpoints).
func (a Address) reserved() bool {
	for _, segment := range []string{a.Partition, a.Collection, a.ItemID} {
		if strings.HasPrefix(segment, "_") {
			return true
		}
	}
	return false
}
