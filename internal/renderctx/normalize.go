package renderctx

import (
	"encoding/base64"
	"time"

	"github.com/conneroisu/veneer/internal/store"
)

// NormalizeDocument recursively converts a native store document into
// render-friendly scalars, maps and slices: object ids become hex
// strings, datetimes RFC3339 strings, binary base64, and the numeric
// subtypes plain Go numbers. Templates never see wrapper types.
func NormalizeDocument(doc store.Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = NormalizeValue(v)
	}

	return out
}

// NormalizeValue converts one native value.
func NormalizeValue(v any) any {
	switch value := v.(type) {
	case store.ObjectID:
		return value.Hex()
	case store.DateTime:
		return value.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return value.UTC().Format(time.RFC3339)
	case store.Binary:
		return base64.StdEncoding.EncodeToString(value)
	case store.Int32:
		return int64(value)
	case store.Int64:
		return int64(value)
	case store.Decimal:
		return string(value)
	case store.Document:
		return NormalizeDocument(value)
	case map[string]any:
		return NormalizeDocument(store.Document(value))
	case store.Array:
		return normalizeSlice(value)
	case []any:
		return normalizeSlice(value)
	default:
		return value
	}
}

func normalizeSlice(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = NormalizeValue(v)
	}

	return out
}
