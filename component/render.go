package component

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Render converts a field value into its canonical message form. Strings
// are used verbatim, lists are concatenated without a separator and
// integers are written in decimal.
func Render(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []string:
		return strings.Join(v, ""), nil
	case []any:
		var sb strings.Builder
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return "", fmt.Errorf("list element %d: expected string, got %T", i, elem)
			}
			sb.WriteString(s)
		}
		return sb.String(), nil
	case json.Number:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		if math.IsNaN(v) || v < -(1<<63) || v >= 1<<63 {
			return "", fmt.Errorf("number %v out of int64 range", v)
		}
		if v != float64(int64(v)) {
			return "", fmt.Errorf("non-integral number %v", v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// RenderQuery converts a field value into its query string form. Lists
// are joined with a space, which url encoding turns into '+'.
func RenderQuery(v any) (string, error) {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, " "), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return Render(v)
}
