package search

import (
	"context"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

// Client fetches a single page of categorized results.
// Implementations must not retry internally; the pagination layer owns retry policy.
type Client interface {
	FetchPage(ctx context.Context, category domain.Category, query string, page int) (*domain.SearchPage, error)
}
