package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
)

// WriteResponse prints resp to w: JSON for hashes and arrays (indented when pretty),
// the body as-is otherwise.
func WriteResponse(w io.Writer, resp soundcloud.Response, pretty bool) error {
	var data []byte
	switch r := resp.(type) {
	case *soundcloud.HashResponse, *soundcloud.ArrayResponse:
		var err error
		if pretty {
			data, err = shared.MarshalJSON(r)
		} else {
			data, err = jsonLine(r)
		}
		if err != nil {
			return err
		}
	case *soundcloud.RawResponse:
		data = r.Body
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
	case nil:
		return nil
	default:
		return fmt.Errorf("%w: %T", shared.ErrUnexpectedResponse, resp)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Summary renders a hash as "key: value" lines for scalar fields, sorted by key.
// Nested objects and arrays are summarized by size.
func Summary(h *soundcloud.HashResponse) string {
	var b strings.Builder
	for _, key := range h.Keys() {
		v, _ := h.Get(key)
		switch t := v.(type) {
		case *soundcloud.HashResponse:
			fmt.Fprintf(&b, "%s: {%d keys}\n", key, len(t.Keys()))
		case *soundcloud.ArrayResponse:
			fmt.Fprintf(&b, "%s: [%d items]\n", key, t.Len())
		case nil:
			fmt.Fprintf(&b, "%s: null\n", key)
		default:
			fmt.Fprintf(&b, "%s: %s\n", key, h.String(key))
		}
	}
	return b.String()
}

func jsonLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return append(data, '\n'), nil
}
