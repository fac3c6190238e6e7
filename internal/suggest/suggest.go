package suggest

import "context"

// Client fetches remote autocomplete suggestions for a partial query.
// An empty prefix returns an empty slice without a network call.
type Client interface {
	Fetch(ctx context.Context, prefix string) ([]string, error)
}
