package domain

import "time"

// ResultItem is the closed variant over web/image/video results.
// The unexported method keeps the set of implementations fixed to this package.
type ResultItem interface {
	Category() Category
	// DetailURL - куда переходить при выборе элемента
	DetailURL() string

	resultItem()
}

type WebItem struct {
	Title    string
	Contents string
	URL      string
	Datetime time.Time
}

func (WebItem) Category() Category { return CategoryWeb }
func (i WebItem) DetailURL() string { return i.URL }
func (WebItem) resultItem() {}

type ImageItem struct {
	Collection      string
	ThumbnailURL    string
	ImageURL        string
	Width           int
	Height          int
	DisplaySitename string
	DocURL          string
	Datetime        time.Time
}

func (ImageItem) Category() Category { return CategoryImage }
func (i ImageItem) DetailURL() string { return i.DocURL }
func (ImageItem) resultItem() {}

type VideoItem struct {
	Title     string
	PlayTime  int // seconds
	Thumbnail string
	URL       string
	Datetime  time.Time
	Author    string
}

func (VideoItem) Category() Category { return CategoryVideo }
func (i VideoItem) DetailURL() string { return i.URL }
func (VideoItem) resultItem() {}

// PageMeta is the server-side metadata block of one result page.
type PageMeta struct {
	TotalCount    int
	PageableCount int
	IsEnd         bool
}

// SearchPage is one decoded page of results for a single category.
// IsEnd is the server-declared end-of-results flag; an empty Items slice
// with IsEnd=false still means more pages exist.
type SearchPage struct {
	Items []ResultItem
	Meta  PageMeta
}

func (p SearchPage) IsLastPage() bool {
	return p.Meta.IsEnd
}
