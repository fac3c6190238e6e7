package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/search-pipeline/internal/cache"
	"github.com/kitbuilder587/search-pipeline/internal/domain"
	"github.com/kitbuilder587/search-pipeline/internal/metrics"
	"github.com/kitbuilder587/search-pipeline/internal/repository"
	"github.com/kitbuilder587/search-pipeline/internal/suggest"
)

const (
	historyLimitTyping = 3  // префиксные совпадения во время набора
	historyLimitEmpty  = 10 // последние записи при пустом поле
)

type SuggesterDeps struct {
	History repository.HistoryRepository
	Remote  suggest.Client
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	// опциональный кеш подсказок
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Suggester объединяет локальную историю и удалённый автокомплит
// в один ответ на устоявшийся запрос.
type Suggester struct {
	history  repository.HistoryRepository
	remote   suggest.Client
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewSuggester(deps SuggesterDeps) *Suggester {
	if deps.CacheTTL == 0 {
		deps.CacheTTL = time.Minute
	}

	return &Suggester{
		history:  deps.History,
		remote:   deps.Remote,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

// Suggest выполняет обе выборки параллельно. Ошибка одной стороны не гасит
// результат другой: вывод всегда возвращается, ошибки склеиваются в err.
func (s *Suggester) Suggest(ctx context.Context, query string) (*domain.SuggestOutput, error) {
	query = strings.TrimSpace(query)

	out := &domain.SuggestOutput{
		Query:   query,
		Records: []domain.HistoryRecord{},
		Words:   []string{},
	}

	var historyErr, remoteErr error
	var g errgroup.Group

	g.Go(func() error {
		limit := historyLimitTyping
		if query == "" {
			limit = historyLimitEmpty
		}

		records, err := s.history.Query(ctx, query, limit)
		if err != nil {
			historyErr = err
			if s.metrics != nil {
				s.metrics.RecordHistoryOp("query", "error")
			}
			return nil
		}
		if s.metrics != nil {
			s.metrics.RecordHistoryOp("query", "ok")
		}
		if records != nil {
			out.Records = records
		}
		return nil
	})

	// пустой запрос - удалённый автокомплит пропускаем целиком
	if query != "" {
		g.Go(func() error {
			if words, ok := s.cachedWords(query); ok {
				out.Words = words
				return nil
			}

			words, err := s.remote.Fetch(ctx, query)
			if err != nil {
				remoteErr = err
				return nil
			}
			if words != nil {
				out.Words = words
			}
			if s.cache != nil {
				s.cache.Set(query, out.Words, s.cacheTTL)
			}
			return nil
		})
	}

	g.Wait()

	if historyErr != nil {
		s.logger.Warn("history lookup failed", zap.String("query", query), zap.Error(historyErr))
	}
	if remoteErr != nil {
		s.logger.Warn("remote suggestions failed", zap.String("query", query), zap.Error(remoteErr))
	}

	return out, errors.Join(historyErr, remoteErr)
}

func (s *Suggester) cachedWords(query string) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	words, ok := s.cache.Get(query)
	if s.metrics != nil {
		if ok {
			s.metrics.RecordCacheHit()
		} else {
			s.metrics.RecordCacheMiss()
		}
	}
	return words, ok
}
