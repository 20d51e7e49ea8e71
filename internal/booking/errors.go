package booking

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GenericSubmitError is shown when the backend's error body has no recognisable shape.
const GenericSubmitError = "Failed to create booking. Please try again."

// AggregateErrors flattens a backend error body into one newline-joined message.
// Field errors may come as a map of field to message(s), an array of messages or a
// single string, optionally wrapped under "errors". Map keys are visited in sorted order.
func AggregateErrors(body []byte) string {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return GenericSubmitError
	}

	if obj, ok := doc.(map[string]interface{}); ok {
		if inner, ok := obj["errors"]; ok {
			doc = inner
		} else if msg, ok := obj["message"].(string); ok && len(obj) == 1 {
			doc = msg
		}
	}

	lines := flatten(doc)
	if len(lines) == 0 {
		return GenericSubmitError
	}
	return strings.Join(lines, "\n")
}

func flatten(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	case []interface{}:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []string
		for _, k := range keys {
			for _, msg := range flatten(val[k]) {
				out = append(out, fmt.Sprintf("%s: %s", k, msg))
			}
		}
		return out
	}
	return nil
}
