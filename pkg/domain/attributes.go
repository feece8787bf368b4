package domain

import (
	"encoding/json"
	"fmt"
)

// Attributes is the persisted-attributes document of a user.
// Top-level keys are group names, values are the groups' JSON-compatible documents.
type Attributes map[string]any

// Clone returns a deep copy of the document. Nested maps and slices are copied too.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	return Attributes(CopyMap(a))
}

// CopyMap returns a deep copy of m, descending into nested maps and []any.
// Other values are copied by assignment.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return CopyMap(tv)
	case Attributes:
		return Attributes(CopyMap(tv))
	case []any:
		if tv == nil {
			return tv
		}
		items := make([]any, len(tv))
		for i, item := range tv {
			items[i] = copyValue(item)
		}
		return items
	default:
		return v
	}
}

// Normalize converts the document into plain JSON types (maps, slices, float64, string, bool, nil)
// by round-tripping it through encoding/json. Values that cannot be encoded fail the call.
func Normalize(a Attributes) (Attributes, error) {
	if a == nil {
		return Attributes{}, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	out := Attributes{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	return out, nil
}
