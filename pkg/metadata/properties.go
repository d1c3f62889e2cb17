package metadata

import (
	"fmt"
	"strconv"
	"time"
)

// Properties is a property bag. Values are strings, numbers, booleans,
// times, lists and maps of those. After a JSON round trip numbers arrive as
// float64 and times as RFC 3339 strings; the accessors accept both forms.
type Properties map[string]any

// GetString returns a string property or "".
func (p Properties) GetString(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// GetStrings returns a string list property.
func (p Properties) GetStrings(name string) []string {
	switch v := p[name].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	default:
		return nil
	}
}

// GetMap returns a string map property.
func (p Properties) GetMap(name string) map[string]string {
	switch v := p[name].(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			if s, ok := item.(string); ok {
				out[k] = s
			} else if item != nil {
				out[k] = fmt.Sprint(item)
			}
		}
		return out
	default:
		return nil
	}
}

// GetInt returns an integer property or 0.
func (p Properties) GetInt(name string) int64 {
	switch v := p[name].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// GetBool returns a boolean property or false.
func (p Properties) GetBool(name string) bool {
	switch v := p[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// GetTime returns a time property.
func (p Properties) GetTime(name string) (time.Time, bool) {
	switch v := p[name].(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// Clone returns a deep copy of the bag. Nested lists and maps are copied.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns p overlaid with other. A nil value in other removes the
// key.
func (p Properties) Merge(other Properties) Properties {
	out := p.Clone()
	if out == nil {
		out = Properties{}
	}
	for k, v := range other {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		c := make([]any, len(t))
		for i, item := range t {
			c[i] = cloneValue(item)
		}
		return c
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, item := range t {
			c[k] = cloneValue(item)
		}
		return c
	case map[string]string:
		c := make(map[string]string, len(t))
		for k, s := range t {
			c[k] = s
		}
		return c
	case Properties:
		return t.Clone()
	default:
		return v
	}
}
