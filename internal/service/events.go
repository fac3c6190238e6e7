package service

import "github.com/kitbuilder587/search-pipeline/internal/domain"

// PageEvent is emitted after one page of results is applied to pagination
// state. Appended carries only the newly fetched items; Page == 1 means the
// consumer resets its accumulated list before appending.
type PageEvent struct {
	Category domain.Category
	Query    string
	Page     int
	Appended []domain.ResultItem
	Total    int
	IsEnd    bool
}

// PipelineError is a non-fatal error routed to the single error sink.
// Category is empty for errors that are not tied to a result category.
type PipelineError struct {
	Source   string // "search", "suggest", "history"
	Category domain.Category
	Query    string
	Page     int
	Err      error
}

func (e PipelineError) Error() string {
	return e.Err.Error()
}

func (e PipelineError) Unwrap() error {
	return e.Err
}
