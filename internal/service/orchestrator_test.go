package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
	"github.com/kitbuilder587/search-pipeline/internal/repository"
	"github.com/kitbuilder587/search-pipeline/internal/search/mock"
)

func newTestOrchestrator(t *testing.T, client *mock.Client, repo *repository.MockHistoryRepository, remote *fakeSuggestClient) *Orchestrator {
	t.Helper()
	if remote == nil {
		remote = &fakeSuggestClient{}
	}
	o := NewOrchestrator(OrchestratorDeps{
		History: repo,
		Search:  client,
		Suggest: remote,
		Logger:  zap.NewNop(),
		Config: OrchestratorConfig{
			DebounceInterval: 20 * time.Millisecond,
		},
	})
	t.Cleanup(o.Close)
	return o
}

func TestOrchestrator_CommitRecordsHistoryAndSearches(t *testing.T) {
	client := mock.New().Script(domain.CategoryWeb, "cats", 1, webPage(true, "a"), nil)
	repo := repository.NewMockHistoryRepository()
	o := newTestOrchestrator(t, client, repo, nil)

	o.Commit(context.Background(), "  cats  ")

	ev, ok := recvPageEvent(t, o.Events(), time.Second)
	if !ok {
		t.Fatal("expected a page event after commit")
	}
	if ev.Category != domain.CategoryWeb || ev.Query != "cats" || ev.Page != 1 {
		t.Errorf("unexpected event %+v", ev)
	}

	records, err := repo.Query(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 || records[0].Word != "cats" {
		t.Errorf("history = %+v, want single trimmed record cats", records)
	}
	if o.LastQuery() != "cats" {
		t.Errorf("LastQuery() = %q", o.LastQuery())
	}
}

func TestOrchestrator_EmptyCommitSkipsHistory(t *testing.T) {
	client := mock.New()
	repo := repository.NewMockHistoryRepository()
	o := newTestOrchestrator(t, client, repo, nil)

	o.Commit(context.Background(), "   ")

	ev, ok := recvPageEvent(t, o.Events(), time.Second)
	if !ok {
		t.Fatal("expected an end event for the empty query")
	}
	if !ev.IsEnd || len(ev.Appended) != 0 {
		t.Errorf("unexpected event %+v", ev)
	}
	if repo.Len() != 0 {
		t.Errorf("history has %d records, want 0", repo.Len())
	}
	if client.CallCount() != 0 {
		t.Errorf("search called %d times, want 0", client.CallCount())
	}
}

func TestOrchestrator_HistoryFailureDoesNotBlockSearch(t *testing.T) {
	client := mock.New().Script(domain.CategoryWeb, "cats", 1, webPage(true, "a"), nil)
	repo := repository.NewMockHistoryRepository()
	repo.FailWith = domain.ErrStorage
	o := newTestOrchestrator(t, client, repo, nil)

	o.Commit(context.Background(), "cats")

	perr, ok := recvPipelineError(t, o.Errors(), time.Second)
	if !ok {
		t.Fatal("expected a history error on the error channel")
	}
	if perr.Source != "history" || !errors.Is(perr, domain.ErrStorage) {
		t.Errorf("unexpected error %+v", perr)
	}

	// поиск идёт дальше несмотря на отказ стораджа
	if _, ok := recvPageEvent(t, o.Events(), time.Second); !ok {
		t.Fatal("expected the search to proceed despite the history failure")
	}
}

func TestOrchestrator_SelectCategoryRestartsWithLastQuery(t *testing.T) {
	client := mock.New().
		Script(domain.CategoryWeb, "cats", 1, webPage(true, "w"), nil).
		Script(domain.CategoryImage, "cats", 1, webPage(true, "i"), nil)
	repo := repository.NewMockHistoryRepository()
	o := newTestOrchestrator(t, client, repo, nil)

	o.Commit(context.Background(), "cats")
	if _, ok := recvPageEvent(t, o.Events(), time.Second); !ok {
		t.Fatal("expected the web event")
	}

	o.SelectCategory(context.Background(), domain.CategoryImage)

	ev, ok := recvPageEvent(t, o.Events(), time.Second)
	if !ok {
		t.Fatal("expected the image event")
	}
	if ev.Category != domain.CategoryImage || ev.Query != "cats" {
		t.Errorf("unexpected event %+v", ev)
	}
	if o.Category() != domain.CategoryImage {
		t.Errorf("Category() = %v", o.Category())
	}

	// переключение не пишет историю
	if repo.Len() != 1 {
		t.Errorf("history has %d records, want 1", repo.Len())
	}
}

func TestOrchestrator_SelectCategoryReusesWarmController(t *testing.T) {
	client := mock.New().
		Script(domain.CategoryWeb, "cats", 1, webPage(true, "w"), nil).
		Script(domain.CategoryImage, "cats", 1, webPage(true, "i"), nil)
	repo := repository.NewMockHistoryRepository()
	o := newTestOrchestrator(t, client, repo, nil)

	o.Commit(context.Background(), "cats")
	recvPageEvent(t, o.Events(), time.Second)

	o.SelectCategory(context.Background(), domain.CategoryImage)
	recvPageEvent(t, o.Events(), time.Second)
	calls := client.CallCount()

	// обратно на web: контроллер уже держит cats, перезапуска нет
	o.SelectCategory(context.Background(), domain.CategoryWeb)

	if _, ok := recvPageEvent(t, o.Events(), 100*time.Millisecond); ok {
		t.Error("reusing a warm controller must not emit a new event")
	}
	if client.CallCount() != calls {
		t.Errorf("search called %d times, want %d (no refetch on reuse)", client.CallCount(), calls)
	}

	items := o.Controller(domain.CategoryWeb).Items()
	if len(items) != 1 {
		t.Errorf("web controller kept %d items, want 1", len(items))
	}
}

func TestOrchestrator_FetchNextTargetsActiveCategory(t *testing.T) {
	client := mock.New().
		Script(domain.CategoryWeb, "cats", 1, webPage(false, "a"), nil).
		Script(domain.CategoryWeb, "cats", 2, webPage(true, "b"), nil)
	repo := repository.NewMockHistoryRepository()
	o := newTestOrchestrator(t, client, repo, nil)

	o.Commit(context.Background(), "cats")
	recvPageEvent(t, o.Events(), time.Second)

	o.FetchNext(context.Background())

	ev, ok := recvPageEvent(t, o.Events(), time.Second)
	if !ok {
		t.Fatal("expected the second page event")
	}
	if ev.Page != 2 || ev.Total != 2 || !ev.IsEnd {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestOrchestrator_InputDebouncesIntoSuggestions(t *testing.T) {
	client := mock.New()
	repo := repository.NewMockHistoryRepository()
	seedHistory(t, repo, "golang")
	remote := &fakeSuggestClient{words: []string{"go tutorial"}}
	o := newTestOrchestrator(t, client, repo, remote)

	o.Input("g")
	o.Input("go")

	select {
	case out := <-o.Suggestions():
		if out.Query != "go" {
			t.Errorf("Query = %q, want the last input", out.Query)
		}
		if len(out.Records) != 1 || out.Records[0].Word != "golang" {
			t.Errorf("Records = %+v", out.Records)
		}
		if len(out.Words) != 1 || out.Words[0] != "go tutorial" {
			t.Errorf("Words = %v", out.Words)
		}
	case <-time.After(time.Second):
		t.Fatal("expected suggestions for the settled input")
	}

	if remote.callCount() != 1 {
		t.Errorf("remote called %d times, want 1 (intermediate input debounced)", remote.callCount())
	}
}

func TestOrchestrator_DeleteRecordMissingIsSilent(t *testing.T) {
	client := mock.New()
	repo := repository.NewMockHistoryRepository()
	o := newTestOrchestrator(t, client, repo, nil)

	o.DeleteRecord(context.Background(), 42)

	if _, ok := recvPipelineError(t, o.Errors(), 100*time.Millisecond); ok {
		t.Error("missing record must not surface as a pipeline error")
	}
}
