// Package store provides the structured document store the veneer
// pipeline fronts: the native value model, resource addressing, the
// client interface consumed by the context builders, an in-memory
// implementation, and YAML seed loading.
package store

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// IDField is the identifier field of every document.
const IDField = "_id"

// Native value types. Documents yielded by the store carry these wrapper
// types so consumers can distinguish identifier and scalar subtypes that
// a plain JSON decode would collapse.
type (
	// ObjectID is the store's default identifier type, a hex string.
	ObjectID string

	// DateTime is a native timestamp value.
	DateTime time.Time

	// Binary is a native binary value.
	Binary []byte

	// Int32, Int64 and Decimal are the native numeric subtypes.
	Int32   int32
	Int64   int64
	Decimal string

	// Document is a native document: a string-keyed mapping whose values
	// may be nested Documents, Arrays, or native scalars.
	Document map[string]any

	// Array is a native array value.
	Array []any
)

// Hex returns the hexadecimal form of the object id.
func (id ObjectID) Hex() string { return string(id) }

// Time returns the underlying time value.
func (d DateTime) Time() time.Time { return time.Time(d) }

// IDKind tags the native type of a document identifier so link building
// can reconstruct a correctly typed reference.
type IDKind string

const (
	IDKindObjectID IDKind = "OID"
	IDKindString   IDKind = "STRING"
	IDKindNumber   IDKind = "NUMBER"
	IDKindDate     IDKind = "DATE"
)

// DefaultIDKind is the identifier kind that needs no type parameter in
// links.
const DefaultIDKind = IDKindObjectID

// KindOfID classifies a native identifier value.
func KindOfID(v any) IDKind {
	switch v.(type) {
	case ObjectID:
		return IDKindObjectID
	case Int32, Int64, Decimal, int, int32, int64, float64:
		return IDKindNumber
	case DateTime, time.Time:
		return IDKindDate
	default:
		return IDKindString
	}
}

// FormatID renders an identifier value into its canonical string form
// for use in links and lookups.
func FormatID(v any) string {
	switch id := v.(type) {
	case ObjectID:
		return id.Hex()
	case DateTime:
		return id.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return id.UTC().Format(time.RFC3339)
	case Int32:
		return strconv.FormatInt(int64(id), 10)
	case Int64:
		return strconv.FormatInt(int64(id), 10)
	case Decimal:
		return string(id)
	case Binary:
		return base64.StdEncoding.EncodeToString(id)
	case string:
		return id
	default:
		return fmt.Sprintf("%v", id)
	}
}
