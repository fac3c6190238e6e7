package google

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
	"github.com/kitbuilder587/search-pipeline/internal/metrics"
)

type Config struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
}

// Client - автокомплит через toolbar-эндпоинт Google.
// Ответ - XML документ, по одному <suggestion data="..."/> на подсказку.
type Client struct {
	baseURL  string
	language string
	client   *http.Client
	logger   *zap.Logger

	metrics *metrics.Metrics
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://suggestqueries.google.com/complete/search"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

type toolbarResponse struct {
	XMLName     xml.Name `xml:"toplevel"`
	Suggestions []struct {
		Data string `xml:"data,attr"`
	} `xml:"CompleteSuggestion>suggestion"`
}

func (c *Client) Fetch(ctx context.Context, prefix string) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}

	reqURL, err := c.buildURL(prefix)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSuggest("network_error", time.Since(start))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordSuggest("network_error", time.Since(start))
		}
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.metrics != nil {
			c.metrics.RecordSuggest("http_error", time.Since(start))
		}
		c.logger.Warn("suggestion request rejected", zap.Int("status", resp.StatusCode))
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	var parsed toolbarResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		if c.metrics != nil {
			c.metrics.RecordSuggest("parse_error", time.Since(start))
		}
		// parse error означает смену контракта на той стороне, логируем отдельно
		c.logger.Error("suggestion response is not toolbar XML", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	words := make([]string, 0, len(parsed.Suggestions))
	for _, s := range parsed.Suggestions {
		words = append(words, s.Data)
	}

	if c.metrics != nil {
		c.metrics.RecordSuggest("ok", time.Since(start))
	}

	c.logger.Debug("fetched suggestions",
		zap.String("prefix", prefix),
		zap.Int("count", len(words)))

	return words, nil
}

func (c *Client) buildURL(prefix string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
	}

	params := url.Values{}
	params.Set("output", "toolbar")
	params.Set("hl", c.language)
	params.Set("q", prefix)
	base.RawQuery = params.Encode()

	return base.String(), nil
}
