package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

// Call is one recorded FetchPage invocation.
type Call struct {
	Category domain.Category
	Query    string
	Page     int
}

// Client - скриптуемый search.Client для тестов.
// Ответы задаются на конкретную тройку (category, query, page);
// Gate позволяет придержать ответ, чтобы проверить гонки со stale-ответами.
type Client struct {
	mu        sync.Mutex
	responses map[string]response
	err       error
	delay     time.Duration
	gate      chan struct{}
	calls     []Call
}

type response struct {
	page *domain.SearchPage
	err  error
}

func New() *Client {
	return &Client{responses: make(map[string]response)}
}

// Script registers the response returned for one (category, query, page).
func (c *Client) Script(category domain.Category, query string, page int, result *domain.SearchPage, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[callKey(category, query, page)] = response{page: result, err: err}
	return c
}

// WithError makes every unscripted call fail with err.
func (c *Client) WithError(err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = delay
	return c
}

// WithGate blocks each FetchPage until one token is received on gate.
func (c *Client) WithGate(gate chan struct{}) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = gate
	return c
}

func (c *Client) FetchPage(ctx context.Context, category domain.Category, query string, page int) (*domain.SearchPage, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Category: category, Query: query, Page: page})
	resp, scripted := c.responses[callKey(category, query, page)]
	err := c.err
	delay := c.delay
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-gate:
		}
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if scripted {
		return resp.page, resp.err
	}
	if err != nil {
		return nil, err
	}

	// unscripted calls succeed with an empty last page
	return &domain.SearchPage{Meta: domain.PageMeta{IsEnd: true}}, nil
}

func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

func (c *Client) LastCall() (Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return Call{}, false
	}
	return c.calls[len(c.calls)-1], true
}

func callKey(category domain.Category, query string, page int) string {
	return fmt.Sprintf("%s|%s|%d", category, query, page)
}
