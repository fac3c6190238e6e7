package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
	"github.com/kitbuilder587/search-pipeline/internal/metrics"
	"github.com/kitbuilder587/search-pipeline/internal/search"
)

// fetchTag помечает запрос, уходящий в сеть. Ответ применяется только если
// тег всё ещё совпадает с текущим состоянием - поздние ответы по
// вытесненному запросу молча отбрасываются.
type fetchTag struct {
	query string
	page  int
}

type ControllerDeps struct {
	Category domain.Category
	Search   search.Client
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Events   chan<- PageEvent
	Errors   chan<- PipelineError
}

// Controller - постраничная машина состояний одной категории.
// Инварианты: page только растёт, items только накапливаются (сбрасываются
// целиком при новом запросе), isEnd не откатывается, в полёте максимум
// один запрос.
type Controller struct {
	category domain.Category
	search   search.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
	events   chan<- PageEvent
	errors   chan<- PipelineError

	mu      sync.Mutex
	query   string
	page    int // последняя успешно применённая страница, 0 = ничего
	items   []domain.ResultItem
	isEnd   bool
	pending *fetchTag
}

func NewController(deps ControllerDeps) *Controller {
	return &Controller{
		category: deps.Category,
		search:   deps.Search,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		events:   deps.Events,
		errors:   deps.Errors,
	}
}

// Restart начинает пагинацию заново для query.
// Пустой query сразу даёт конечное состояние с пустым списком, без сети.
// Повторный Restart с тем же query при запросе в полёте отбрасывается.
func (c *Controller) Restart(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	c.mu.Lock()

	if query == "" {
		c.query = ""
		c.page = 0
		c.items = nil
		c.isEnd = true
		c.pending = nil
		c.mu.Unlock()

		c.sendEvent(PageEvent{
			Category: c.category,
			Page:     1,
			IsEnd:    true,
		})
		return
	}

	if query == c.query && c.pending != nil {
		// дубликат, запрос уже в полёте
		c.mu.Unlock()
		return
	}

	c.query = query
	c.page = 0
	c.items = nil
	c.isEnd = false
	tag := fetchTag{query: query, page: 1}
	c.pending = &tag
	c.mu.Unlock()

	go c.fetch(ctx, tag)
}

// FetchNext запрашивает следующую страницу. No-op если результаты кончились
// или запрос уже в полёте.
func (c *Controller) FetchNext(ctx context.Context) {
	c.mu.Lock()
	if c.query == "" || c.isEnd || c.pending != nil {
		c.mu.Unlock()
		return
	}

	tag := fetchTag{query: c.query, page: c.page + 1}
	c.pending = &tag
	c.mu.Unlock()

	go c.fetch(ctx, tag)
}

func (c *Controller) fetch(ctx context.Context, tag fetchTag) {
	if c.metrics != nil {
		c.metrics.IncSearchInFlight()
		defer c.metrics.DecSearchInFlight()
	}

	result, err := c.search.FetchPage(ctx, c.category, tag.query, tag.page)

	c.mu.Lock()

	if c.pending == nil || *c.pending != tag {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.RecordStaleDropped(c.category.String())
		}
		c.logger.Debug("dropping stale page response",
			zap.String("category", c.category.String()),
			zap.String("query", tag.query),
			zap.Int("page", tag.page))
		return
	}
	c.pending = nil

	if err != nil {
		// состояние не трогаем: контроллер остаётся пригодным для retry
		c.mu.Unlock()
		c.sendError(PipelineError{
			Source:   "search",
			Category: c.category,
			Query:    tag.query,
			Page:     tag.page,
			Err:      err,
		})
		return
	}

	c.items = append(c.items, result.Items...)
	c.page = tag.page
	c.isEnd = result.IsLastPage()
	total := len(c.items)
	isEnd := c.isEnd
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordPageLoaded(c.category.String())
	}

	c.sendEvent(PageEvent{
		Category: c.category,
		Query:    tag.query,
		Page:     tag.page,
		Appended: result.Items,
		Total:    total,
		IsEnd:    isEnd,
	})
}

func (c *Controller) sendEvent(ev PageEvent) {
	if c.events != nil {
		c.events <- ev
	}
}

func (c *Controller) sendError(perr PipelineError) {
	c.logger.Warn("page fetch failed",
		zap.String("category", perr.Category.String()),
		zap.String("query", perr.Query),
		zap.Int("page", perr.Page),
		zap.Error(perr.Err))
	if c.errors != nil {
		c.errors <- perr
	}
}

// --- snapshot accessors ---

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller) IsEnd() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isEnd
}

func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Items возвращает копию накопленных результатов.
func (c *Controller) Items() []domain.ResultItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ResultItem, len(c.items))
	copy(out, c.items)
	return out
}
