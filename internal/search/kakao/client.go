package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
	"github.com/kitbuilder587/search-pipeline/internal/metrics"
	"github.com/kitbuilder587/search-pipeline/internal/ratelimit"
)

type Config struct {
	APIKey     string
	AuthScheme string
	BaseURL    string
	PageSize   int
	Timeout    time.Duration
}

// Client - HTTP клиент поискового API (web/image/vclip эндпоинты).
type Client struct {
	apiKey     string
	authScheme string
	baseURL    string
	pageSize   int
	client     *http.Client
	logger     *zap.Logger

	limiter *ratelimit.Limiter
	metrics *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "KakaoAK"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://dapi.kakao.com/v2/search"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		authScheme: cfg.AuthScheme,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   cfg.PageSize,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *Client) WithLimiter(l *ratelimit.Limiter) *Client {
	c.limiter = l
	return c
}

func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

type metaPayload struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

type pagePayload struct {
	Meta      metaPayload     `json:"meta"`
	Documents json.RawMessage `json:"documents"`
}

type webDocument struct {
	Title    string    `json:"title"`
	Contents string    `json:"contents"`
	URL      string    `json:"url"`
	Datetime time.Time `json:"datetime"`
}

type imageDocument struct {
	Collection      string    `json:"collection"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	ImageURL        string    `json:"image_url"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	DisplaySitename string    `json:"display_sitename"`
	DocURL          string    `json:"doc_url"`
	Datetime        time.Time `json:"datetime"`
}

type videoDocument struct {
	Title     string    `json:"title"`
	PlayTime  int       `json:"play_time"`
	Thumbnail string    `json:"thumbnail"`
	URL       string    `json:"url"`
	Datetime  time.Time `json:"datetime"`
	Author    string    `json:"author"`
}

func (c *Client) FetchPage(ctx context.Context, category domain.Category, query string, page int) (*domain.SearchPage, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidQuery, category)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidQuery)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page %d", domain.ErrInvalidQuery, page)
	}

	if c.limiter != nil && !c.limiter.Allow("search:"+category.EndpointPath()) {
		if c.metrics != nil {
			c.metrics.RecordSearch(category.String(), "rate_limited", 0)
		}
		return nil, domain.ErrRateLimited
	}

	reqURL, err := c.buildURL(category, query, page)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}
	httpReq.Header.Set("Authorization", c.authScheme+" "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSearch(category.String(), "network_error", time.Since(start))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSearch(category.String(), "network_error", time.Since(start))
		}
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.metrics != nil {
			c.metrics.RecordSearch(category.String(), "http_"+strconv.Itoa(resp.StatusCode), time.Since(start))
		}
		c.logger.Warn("search request rejected",
			zap.String("category", category.String()),
			zap.Int("status", resp.StatusCode))
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	result, err := decodePage(category, body)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSearch(category.String(), "parse_error", time.Since(start))
		}
		c.logger.Error("search response does not match schema",
			zap.String("category", category.String()),
			zap.Error(err))
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordSearch(category.String(), "ok", time.Since(start))
	}

	c.logger.Debug("fetched search page",
		zap.String("category", category.String()),
		zap.Int("page", page),
		zap.Int("items", len(result.Items)),
		zap.Bool("is_end", result.Meta.IsEnd))

	return result, nil
}

func (c *Client) buildURL(category domain.Category, query string, page int) (string, error) {
	base, err := url.Parse(c.baseURL + "/" + category.EndpointPath())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	if c.pageSize > 0 {
		params.Set("size", strconv.Itoa(c.pageSize))
	}
	base.RawQuery = params.Encode()

	return base.String(), nil
}

func decodePage(category domain.Category, body []byte) (*domain.SearchPage, error) {
	var payload pagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	page := &domain.SearchPage{
		Meta: domain.PageMeta{
			TotalCount:    payload.Meta.TotalCount,
			PageableCount: payload.Meta.PageableCount,
			IsEnd:         payload.Meta.IsEnd,
		},
	}

	if len(payload.Documents) == 0 {
		return page, nil
	}

	switch category {
	case domain.CategoryWeb:
		var docs []webDocument
		if err := json.Unmarshal(payload.Documents, &docs); err != nil {
			return nil, fmt.Errorf("%w: web documents: %v", domain.ErrParse, err)
		}
		for _, d := range docs {
			page.Items = append(page.Items, domain.WebItem{
				Title:    d.Title,
				Contents: d.Contents,
				URL:      d.URL,
				Datetime: d.Datetime,
			})
		}

	case domain.CategoryImage:
		var docs []imageDocument
		if err := json.Unmarshal(payload.Documents, &docs); err != nil {
			return nil, fmt.Errorf("%w: image documents: %v", domain.ErrParse, err)
		}
		for _, d := range docs {
			page.Items = append(page.Items, domain.ImageItem{
				Collection:      d.Collection,
				ThumbnailURL:    d.ThumbnailURL,
				ImageURL:        d.ImageURL,
				Width:           d.Width,
				Height:          d.Height,
				DisplaySitename: d.DisplaySitename,
				DocURL:          d.DocURL,
				Datetime:        d.Datetime,
			})
		}

	case domain.CategoryVideo:
		var docs []videoDocument
		if err := json.Unmarshal(payload.Documents, &docs); err != nil {
			return nil, fmt.Errorf("%w: video documents: %v", domain.ErrParse, err)
		}
		for _, d := range docs {
			page.Items = append(page.Items, domain.VideoItem{
				Title:     d.Title,
				PlayTime:  d.PlayTime,
				Thumbnail: d.Thumbnail,
				URL:       d.URL,
				Datetime:  d.Datetime,
				Author:    d.Author,
			})
		}
	}

	return page, nil
}
