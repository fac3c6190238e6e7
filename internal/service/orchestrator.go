package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/search-pipeline/internal/cache"
	"github.com/kitbuilder587/search-pipeline/internal/domain"
	"github.com/kitbuilder587/search-pipeline/internal/metrics"
	"github.com/kitbuilder587/search-pipeline/internal/repository"
	"github.com/kitbuilder587/search-pipeline/internal/search"
	"github.com/kitbuilder587/search-pipeline/internal/suggest"
)

type OrchestratorConfig struct {
	DebounceInterval time.Duration
	SuggestCacheTTL  time.Duration
	InitialCategory  domain.Category
}

type OrchestratorDeps struct {
	History repository.HistoryRepository
	Search  search.Client
	Suggest suggest.Client
	Logger  *zap.Logger
	Config  OrchestratorConfig

	// опциональные компоненты
	Cache   cache.Cache
	Metrics *metrics.Metrics
}

// Orchestrator связывает пайплайн: ввод → дебаунс → подсказки,
// коммит → история + пагинация активной категории.
// Все ошибки подкомпонентов уходят в единый канал Errors.
type Orchestrator struct {
	debouncer   *Debouncer
	suggester   *Suggester
	controllers map[domain.Category]*Controller
	history     repository.HistoryRepository
	logger      *zap.Logger
	metrics     *metrics.Metrics

	events      chan PageEvent
	errors      chan PipelineError
	suggestions chan domain.SuggestOutput

	mu        sync.Mutex
	category  domain.Category
	lastQuery string

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	cfg := deps.Config
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = defaultDebounceInterval
	}
	if !cfg.InitialCategory.IsValid() {
		cfg.InitialCategory = domain.CategoryWeb
	}

	ctx, cancel := context.WithCancel(context.Background())

	o := &Orchestrator{
		history:     deps.History,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		events:      make(chan PageEvent, 16),
		errors:      make(chan PipelineError, 16),
		suggestions: make(chan domain.SuggestOutput, 16),
		category:    cfg.InitialCategory,
		ctx:         ctx,
		cancel:      cancel,
	}

	o.debouncer = NewDebouncer(cfg.DebounceInterval)
	o.suggester = NewSuggester(SuggesterDeps{
		History:  deps.History,
		Remote:   deps.Suggest,
		Cache:    deps.Cache,
		CacheTTL: cfg.SuggestCacheTTL,
		Logger:   deps.Logger,
		Metrics:  deps.Metrics,
	})

	o.controllers = make(map[domain.Category]*Controller, len(domain.Categories))
	for _, cat := range domain.Categories {
		o.controllers[cat] = NewController(ControllerDeps{
			Category: cat,
			Search:   deps.Search,
			Logger:   deps.Logger,
			Metrics:  deps.Metrics,
			Events:   o.events,
			Errors:   o.errors,
		})
	}

	go o.run()

	return o
}

// run гонит устоявшиеся запросы в Suggester.
func (o *Orchestrator) run() {
	for {
		select {
		case <-o.ctx.Done():
			return

		case query := <-o.debouncer.Settled():
			out, err := o.suggester.Suggest(o.ctx, query)
			if err != nil {
				o.reportError(PipelineError{Source: "suggest", Query: query, Err: err})
			}
			// история и подсказки независимы: вывод публикуем даже при ошибке
			select {
			case o.suggestions <- *out:
			case <-o.ctx.Done():
				return
			}
		}
	}
}

// Input принимает очередное состояние строки поиска (полный текст).
func (o *Orchestrator) Input(text string) {
	o.debouncer.Update(text)
}

// Commit фиксирует запрос: пишет историю и перезапускает пагинацию активной
// категории. Пустой после trim запрос историю не трогает.
func (o *Orchestrator) Commit(ctx context.Context, query string) {
	query = domain.NormalizeWord(query)

	// explicit commit отменяет отложенную эмиссию дебаунсера
	o.debouncer.Cancel()

	o.mu.Lock()
	o.lastQuery = query
	category := o.category
	o.mu.Unlock()

	if query != "" {
		if err := o.history.Record(ctx, query); err != nil {
			if o.metrics != nil {
				o.metrics.RecordHistoryOp("record", "error")
			}
			// не фатально: поиск продолжается и без записи истории
			o.reportError(PipelineError{Source: "history", Query: query, Err: err})
		} else if o.metrics != nil {
			o.metrics.RecordHistoryOp("record", "ok")
		}
	}

	o.controllers[category].Restart(ctx, query)
}

// SelectCategory переключает активную категорию. Если её контроллер уже
// работает с последним закоммиченным запросом - переиспользуем накопленное
// состояние; историю переключение не пишет никогда.
func (o *Orchestrator) SelectCategory(ctx context.Context, category domain.Category) {
	if !category.IsValid() {
		o.logger.Warn("ignoring unknown category", zap.String("category", category.String()))
		return
	}

	o.mu.Lock()
	o.category = category
	query := o.lastQuery
	o.mu.Unlock()

	ctrl := o.controllers[category]
	if ctrl.Query() == query {
		return
	}
	ctrl.Restart(ctx, query)
}

// FetchNext подгружает следующую страницу активной категории.
func (o *Orchestrator) FetchNext(ctx context.Context) {
	o.mu.Lock()
	category := o.category
	o.mu.Unlock()

	o.controllers[category].FetchNext(ctx)
}

// DeleteRecord удаляет одну запись истории. Отсутствие записи не ошибка:
// она могла уже исчезнуть при повторном поиске того же слова.
func (o *Orchestrator) DeleteRecord(ctx context.Context, id int64) {
	err := o.history.Delete(ctx, id)
	if err == nil {
		if o.metrics != nil {
			o.metrics.RecordHistoryOp("delete", "ok")
		}
		return
	}
	if errors.Is(err, domain.ErrRecordNotFound) {
		o.logger.Debug("history record already gone", zap.Int64("id", id))
		return
	}
	if o.metrics != nil {
		o.metrics.RecordHistoryOp("delete", "error")
	}
	o.reportError(PipelineError{Source: "history", Err: err})
}

// History - прямая выборка истории для первоначального рендера списка.
func (o *Orchestrator) History(ctx context.Context, prefix string, limit int) ([]domain.HistoryRecord, error) {
	return o.history.Query(ctx, prefix, limit)
}

// Controller отдаёт контроллер категории для снапшотов накопленного состояния.
func (o *Orchestrator) Controller(category domain.Category) *Controller {
	return o.controllers[category]
}

func (o *Orchestrator) Category() domain.Category {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.category
}

func (o *Orchestrator) LastQuery() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastQuery
}

func (o *Orchestrator) Events() <-chan PageEvent {
	return o.events
}

func (o *Orchestrator) Errors() <-chan PipelineError {
	return o.errors
}

func (o *Orchestrator) Suggestions() <-chan domain.SuggestOutput {
	return o.suggestions
}

func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.cancel()
		o.debouncer.Stop()
	})
}

func (o *Orchestrator) reportError(perr PipelineError) {
	o.logger.Warn("pipeline error",
		zap.String("source", perr.Source),
		zap.String("query", perr.Query),
		zap.Error(perr.Err))
	select {
	case o.errors <- perr:
	case <-o.ctx.Done():
	}
}
