package soundcloud

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/desertthunder/scx/internal/shared"
)

// Response is returned by the request methods of [Client]:
// a [*HashResponse], an [*ArrayResponse] or a [*RawResponse].
type Response interface {
	// Value returns the decoded value (or raw body) the response wraps.
	Value() any
}

var (
	_ Response = (*HashResponse)(nil)
	_ Response = (*ArrayResponse)(nil)
	_ Response = (*RawResponse)(nil)
)

// HashResponse is a read-only view over a decoded JSON object.
//
// Keys are exposed exactly as received. Nested objects and arrays are wrapped on access.
// Absent keys yield a nil value rather than an error; see [HashResponse.Require].
type HashResponse struct {
	raw map[string]any
}

// NewHashResponse wraps raw. A nil map is treated as empty.
func NewHashResponse(raw map[string]any) *HashResponse {
	if raw == nil {
		raw = map[string]any{}
	}
	return &HashResponse{raw: raw}
}

// Raw returns the original decoded object unchanged.
func (h *HashResponse) Raw() map[string]any { return h.raw }

func (h *HashResponse) Value() any { return h.raw }

// Get returns the (wrapped) value stored under key and whether the key exists.
func (h *HashResponse) Get(key string) (any, bool) {
	if h == nil {
		return nil, false
	}
	v, ok := h.raw[key]
	if !ok {
		return nil, false
	}
	return wrap(v), true
}

// Has reports whether key is present, even when its value is null.
func (h *HashResponse) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Require is like Get but returns [shared.ErrMissingKey] for absent keys.
func (h *HashResponse) Require(key string) (any, error) {
	v, ok := h.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrMissingKey, key)
	}
	return v, nil
}

// Keys returns the object's keys in sorted order.
func (h *HashResponse) Keys() []string {
	if h == nil {
		return nil
	}
	keys := make([]string, 0, len(h.raw))
	for k := range h.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the value under key rendered as a string. Absent and null values yield "".
func (h *HashResponse) String(key string) string {
	v, ok := h.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the numeric value under key, or 0.
func (h *HashResponse) Int(key string) int64 {
	v, _ := h.Get(key)
	n, _ := toInt(v)
	return n
}

// Float returns the numeric value under key, or 0.
func (h *HashResponse) Float(key string) float64 {
	v, _ := h.Get(key)
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}

// Bool returns the boolean under key, or false.
func (h *HashResponse) Bool(key string) bool {
	v, _ := h.Get(key)
	b, _ := v.(bool)
	return b
}

// Hash returns the nested object under key, or nil.
func (h *HashResponse) Hash(key string) *HashResponse {
	v, _ := h.Get(key)
	nested, _ := v.(*HashResponse)
	return nested
}

// Array returns the nested array under key, or nil.
func (h *HashResponse) Array(key string) *ArrayResponse {
	v, _ := h.Get(key)
	nested, _ := v.(*ArrayResponse)
	return nested
}

// Decode binds the object onto v using its json struct tags.
func (h *HashResponse) Decode(v any) error {
	return rebind(h.raw, v)
}

// MarshalJSON encodes the original object.
func (h *HashResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.raw)
}

// ArrayResponse is a read-only view over a decoded JSON array.
// Object-shaped elements are exposed as [*HashResponse].
type ArrayResponse struct {
	raw []any
}

// NewArrayResponse wraps raw.
func NewArrayResponse(raw []any) *ArrayResponse {
	if raw == nil {
		raw = []any{}
	}
	return &ArrayResponse{raw: raw}
}

// Raw returns the original decoded array unchanged.
func (a *ArrayResponse) Raw() []any { return a.raw }

func (a *ArrayResponse) Value() any { return a.raw }

// Len returns the number of elements.
func (a *ArrayResponse) Len() int {
	if a == nil {
		return 0
	}
	return len(a.raw)
}

// At returns the (wrapped) element at i, or nil when i is out of range.
func (a *ArrayResponse) At(i int) any {
	if i < 0 || i >= a.Len() {
		return nil
	}
	return wrap(a.raw[i])
}

// Hash returns the element at i when it is an object, otherwise nil.
func (a *ArrayResponse) Hash(i int) *HashResponse {
	h, _ := a.At(i).(*HashResponse)
	return h
}

// Items returns every element, wrapped.
func (a *ArrayResponse) Items() []any {
	items := make([]any, a.Len())
	for i := range items {
		items[i] = a.At(i)
	}
	return items
}

// Hashes returns the object-shaped elements in order, skipping anything else.
func (a *ArrayResponse) Hashes() []*HashResponse {
	var out []*HashResponse
	for i := 0; i < a.Len(); i++ {
		if h := a.Hash(i); h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Decode binds the array onto v, typically a pointer to a slice of structs.
func (a *ArrayResponse) Decode(v any) error {
	return rebind(a.raw, v)
}

// MarshalJSON encodes the original array.
func (a *ArrayResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.raw)
}

// RawResponse is a successful response whose body is not a JSON object or array.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Decoded    any // JSON scalar when the body was JSON, otherwise nil
}

func (r *RawResponse) Value() any {
	if r.Decoded != nil {
		return r.Decoded
	}
	return r.Body
}

func wrap(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return NewHashResponse(t)
	case []any:
		return NewArrayResponse(t)
	default:
		return v
	}
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		f, err := t.Float64()
		return int64(f), err == nil
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func rebind(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
