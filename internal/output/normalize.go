package output

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// NormalizeJSONValue converts a generically decoded CBOR value into one that
// encoding/json accepts. Map keys become strings, tags become
// {"tag": n, "value": v} and byte strings are replaced by their length.
func NormalizeJSONValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = NormalizeJSONValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = NormalizeJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = NormalizeJSONValue(item)
		}
		return out
	case cbor.Tag:
		return map[string]any{"tag": v.Number, "value": NormalizeJSONValue(v.Content)}
	case []byte:
		return map[string]any{"bytes": len(v)}
	default:
		return v
	}
}
