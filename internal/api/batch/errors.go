package batch

import (
	"github.com/viamarket/trip-ingestor/internal/types"
)

// FallbackMessage is used when a failure value has no recognizable shape.
const FallbackMessage = "processing failed"

// Normalize converts arbitrary failure data into the uniform BatchError
// shape. It is total: any input, including nil, yields a well-formed list
// and it never panics. Recognized shapes, tried in order:
//
//  1. a BatchError (or list of them) — passed through unchanged
//  2. an error or bare string — wrapped as a message-only record
//  3. a map nested under a single "error" key — unwrapped and re-normalized
//  4. a flat map carrying message/tripIndex/stageIndex/field keys
//  5. a slice — each element normalized independently, results concatenated
//
// Anything else becomes a single record with the fallback message.
func Normalize(raw interface{}) []types.BatchError {
	switch v := raw.(type) {
	case nil:
		return []types.BatchError{}
	case types.BatchError:
		return []types.BatchError{v}
	case *types.BatchError:
		if v == nil {
			return []types.BatchError{}
		}
		return []types.BatchError{*v}
	case []types.BatchError:
		out := make([]types.BatchError, len(v))
		copy(out, v)
		return out
	case string:
		return []types.BatchError{{Message: v}}
	case error:
		return []types.BatchError{{Message: v.Error()}}
	case map[string]interface{}:
		return normalizeMap(v)
	case []interface{}:
		out := []types.BatchError{}
		for _, item := range v {
			out = append(out, Normalize(item)...)
		}
		return out
	default:
		return []types.BatchError{{Message: FallbackMessage}}
	}
}

func normalizeMap(m map[string]interface{}) []types.BatchError {
	// Wrapped shape: the persistence layer reports failures as an object
	// nested under a single "error" key.
	if nested, ok := m["error"].(map[string]interface{}); ok && len(m) == 1 {
		return normalizeMap(nested)
	}

	msg, ok := m["message"].(string)
	if !ok || msg == "" {
		return []types.BatchError{{Message: FallbackMessage}}
	}

	be := types.BatchError{Message: msg}
	if idx, ok := asInt(m["tripIndex"]); ok {
		be.TripIndex = types.IntPtr(idx)
	}
	if idx, ok := asInt(m["stageIndex"]); ok {
		be.StageIndex = types.IntPtr(idx)
	}
	if field, ok := m["field"].(string); ok {
		be.Field = field
	}
	return []types.BatchError{be}
}

// asInt tolerates both native ints and the float64 a JSON decode produces.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
