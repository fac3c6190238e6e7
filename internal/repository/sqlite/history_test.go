package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

// openTestRepo creates an in-memory history store for testing.
func openTestRepo(t *testing.T) *HistoryRepo {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRecord_Query_Roundtrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "golang"))

	records, err := repo.Query(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "golang", records[0].Word)
	assert.NotZero(t, records[0].ID)
	assert.WithinDuration(t, time.Now(), records[0].CreatedAt, 5*time.Second)
}

func TestRecord_DuplicateReplacesOldRecord(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "cats"))

	first, err := repo.Query(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Record(ctx, "cats"))

	second, err := repo.Query(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, second, 1, "duplicate insert must leave exactly one record")

	assert.NotEqual(t, first[0].ID, second[0].ID, "re-record creates a fresh row")
	assert.True(t, second[0].CreatedAt.After(first[0].CreatedAt),
		"recency must reflect the most recent search")
}

func TestRecord_TrimsWhitespace(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "  dogs\n"))

	records, err := repo.Query(ctx, "dogs", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "dogs", records[0].Word)
}

func TestRecord_EmptyWordIsNoop(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, ""))
	require.NoError(t, repo.Record(ctx, "   \t  "))

	records, err := repo.Query(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQuery_PrefixIsCaseSensitive(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "Go"))
	require.NoError(t, repo.Record(ctx, "go"))
	require.NoError(t, repo.Record(ctx, "gopher"))

	records, err := repo.Query(ctx, "go", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.NotEqual(t, "Go", rec.Word, "uppercase prefix must not match lowercase query")
	}
}

func TestQuery_MostRecentFirstAndLimit(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, word := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Record(ctx, word))
		time.Sleep(5 * time.Millisecond)
	}

	records, err := repo.Query(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Word)
	assert.Equal(t, "second", records[1].Word)
}

func TestQuery_GlobMetacharactersAreLiteral(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "c*ts"))
	require.NoError(t, repo.Record(ctx, "cats"))

	records, err := repo.Query(ctx, "c*", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c*ts", records[0].Word)
}

func TestDelete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "cats"))
	records, err := repo.Query(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, repo.Delete(ctx, records[0].ID))

	err = repo.Delete(ctx, records[0].ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestClear(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "cats"))
	require.NoError(t, repo.Record(ctx, "dogs"))

	require.NoError(t, repo.Clear(ctx))

	records, err := repo.Query(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
