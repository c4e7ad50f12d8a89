package store

import (
	"encoding/base64"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/veneer/internal/errors"
)

// seedFile is the YAML shape of a development seed:
//
//	partitions:
//	  acme:
//	    products:
//	      - _id: "oid:665f1c09a2b3c4d5e6f70801"
//	        name: Widget
//	        added: "date:2024-06-01T10:00:00Z"
type seedFile struct {
	Partitions map[string]map[string][]map[string]any `yaml:"partitions"`
}

// Tagged scalar prefixes used in seed files to express native value
// types YAML cannot carry directly.
const (
	seedPrefixObjectID = "oid:"
	seedPrefixDate     = "date:"
	seedPrefixBinary   = "bin:"
)

// LoadSeed populates a Memory store from a YAML seed file.
func LoadSeed(path string, m *Memory) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.NewStoreError("reading seed file: "+path, err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return errors.NewStoreError("decoding seed file: "+path, err)
	}

	for partition, collections := range seed.Partitions {
		for collection, docs := range collections {
			for _, doc := range docs {
				m.Put(partition, collection, coerceDocument(doc))
			}
		}
	}

	return nil
}

// coerceDocument converts YAML-decoded values into the store's native
// value model, recursively.
func coerceDocument(raw map[string]any) Document {
	doc := make(Document, len(raw))
	for key, value := range raw {
		doc[key] = coerceValue(value)
	}

	return doc
}

func coerceValue(value any) any {
	switch v := value.(type) {
	case string:
		return coerceString(v)
	case map[string]any:
		return coerceDocument(v)
	case []any:
		arr := make(Array, len(v))
		for i, item := range v {
			arr[i] = coerceValue(item)
		}
		return arr
	case int:
		return Int64(v)
	case time.Time:
		return DateTime(v)
	default:
		return v
	}
}

func coerceString(s string) any {
	switch {
	case strings.HasPrefix(s, seedPrefixObjectID):
		return ObjectID(strings.TrimPrefix(s, seedPrefixObjectID))
	case strings.HasPrefix(s, seedPrefixDate):
		if t, err := time.Parse(time.RFC3339, strings.TrimPrefix(s, seedPrefixDate)); err == nil {
			return DateTime(t)
		}
		return s
	case strings.HasPrefix(s, seedPrefixBinary):
		if b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, seedPrefixBinary)); err == nil {
			return Binary(b)
		}
		return s
	default:
		return s
	}
}
