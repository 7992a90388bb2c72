package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gogotex/docshare/internal/document"
	"github.com/stretchr/testify/require"
)

func newDoc(id string, created time.Time) *document.Document {
	author := "ann"
	return &document.Document{
		ID:         id,
		DeleteCode: "CODE1234",
		Title:      "title " + id,
		Author:     &author,
		Content:    "content " + id,
		FontSize:   document.DefaultFontSize,
		TextColor:  document.DefaultTextColor,
		TextFormat: document.DefaultTextFormat,
		LineHeight: document.DefaultLineHeight,
		Theme:      document.DefaultTheme,
		CreatedAt:  created.UTC().Truncate(time.Millisecond),
	}
}

// runRepositoryContract exercises the behaviour every backend must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("InsertGetExists", func(t *testing.T) {
		r := newRepo(t)
		d := newDoc("abc12", time.Now())
		require.NoError(t, r.Insert(ctx, d))

		ok, err := r.Exists(ctx, "abc12")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = r.Exists(ctx, "zzz99")
		require.NoError(t, err)
		require.False(t, ok)

		got, err := r.Get(ctx, "abc12")
		require.NoError(t, err)
		require.Equal(t, d.Title, got.Title)
		require.Equal(t, d.Content, got.Content)
		require.Equal(t, "ann", *got.Author)
		require.Equal(t, d.DeleteCode, got.DeleteCode)
		require.True(t, d.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", got.CreatedAt, d.CreatedAt)
	})

	t.Run("NilAuthorRoundTrips", func(t *testing.T) {
		r := newRepo(t)
		d := newDoc("noauth", time.Now())
		d.Author = nil
		require.NoError(t, r.Insert(ctx, d))
		got, err := r.Get(ctx, "noauth")
		require.NoError(t, err)
		require.Nil(t, got.Author)
	})

	t.Run("GetMissing", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Get(ctx, "nope")
		require.ErrorIs(t, err, document.ErrNotFound)
	})

	t.Run("DuplicateIDConflicts", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Insert(ctx, newDoc("dup", time.Now())))
		err := r.Insert(ctx, newDoc("dup", time.Now()))
		require.ErrorIs(t, err, document.ErrConflict)
	})

	t.Run("ConcurrentSameIDOnlyOneWins", func(t *testing.T) {
		r := newRepo(t)
		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = r.Insert(ctx, newDoc("race", time.Now()))
			}(i)
		}
		wg.Wait()
		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			require.ErrorIs(t, err, document.ErrConflict)
		}
		require.Equal(t, 1, wins)
	})

	t.Run("DeleteWithCode", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Insert(ctx, newDoc("del", time.Now())))

		ok, err := r.DeleteWithCode(ctx, "del", "WRONG000")
		require.NoError(t, err)
		require.False(t, ok)
		_, err = r.Get(ctx, "del")
		require.NoError(t, err)

		ok, err = r.DeleteWithCode(ctx, "del", "CODE1234")
		require.NoError(t, err)
		require.True(t, ok)
		_, err = r.Get(ctx, "del")
		require.ErrorIs(t, err, document.ErrNotFound)

		ok, err = r.DeleteWithCode(ctx, "del", "CODE1234")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("OlderThanIsStrict", func(t *testing.T) {
		r := newRepo(t)
		threshold := time.Now().UTC().Add(-30 * 24 * time.Hour).Truncate(time.Millisecond)
		require.NoError(t, r.Insert(ctx, newDoc("old1", threshold.Add(-time.Hour))))
		require.NoError(t, r.Insert(ctx, newDoc("old2", threshold.Add(-time.Millisecond))))
		require.NoError(t, r.Insert(ctx, newDoc("edge", threshold)))
		require.NoError(t, r.Insert(ctx, newDoc("new1", time.Now())))

		list, err := r.ListOlderThan(ctx, threshold)
		require.NoError(t, err)
		ids := []string{}
		for _, d := range list {
			ids = append(ids, d.ID)
		}
		require.Equal(t, []string{"old1", "old2"}, ids)

		n, err := r.DeleteOlderThan(ctx, threshold)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		n, err = r.DeleteOlderThan(ctx, threshold)
		require.NoError(t, err)
		require.EqualValues(t, 0, n)

		for _, id := range []string{"edge", "new1"} {
			_, err := r.Get(ctx, id)
			require.NoError(t, err, fmt.Sprintf("%s should survive", id))
		}
	})

	t.Run("OlderThanSubMillisecondThreshold", func(t *testing.T) {
		r := newRepo(t)
		created := time.Now().UTC().Add(-31 * 24 * time.Hour).Truncate(time.Millisecond)
		require.NoError(t, r.Insert(ctx, newDoc("half", created)))
		threshold := created.Add(500 * time.Microsecond)

		list, err := r.ListOlderThan(ctx, threshold)
		require.NoError(t, err)
		require.Len(t, list, 1)

		n, err := r.DeleteOlderThan(ctx, threshold)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, newRepo(t).Ping(ctx))
	})
}
