// package services defines the provider API client and the payload types it decodes.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// JSONObject is a decoded JSON object as returned by the provider API.
type JSONObject = map[string]any

// Fetcher is implemented by clients that read single resources and paginated collections.
type Fetcher interface {
	// Get fetches one resource, retrying up to maxTries attempts.
	Get(ctx context.Context, path string, params url.Values, maxTries int) (JSONObject, error)

	// List follows the next link from page to page and concatenates every page's items.
	List(ctx context.Context, path string, params url.Values) ([]JSONObject, error)
}

// Decode converts a decoded JSON object into a typed value.
func Decode[T any](obj JSONObject) (T, error) {
	var v T
	data, err := json.Marshal(obj)
	if err != nil {
		return v, fmt.Errorf("failed to re-encode object: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to decode object: %w", err)
	}
	return v, nil
}

// DecodeAll converts every object with [Decode], keeping order.
func DecodeAll[T any](objs []JSONObject) ([]T, error) {
	out := make([]T, 0, len(objs))
	for i, obj := range objs {
		v, err := Decode[T](obj)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
