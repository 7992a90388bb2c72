package sweeper

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gogotex/docshare/internal/database"
	"github.com/gogotex/docshare/internal/document"
	"github.com/gogotex/docshare/internal/document/repository"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *repository.MemoryRepo, id string, age time.Duration) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &document.Document{
		ID: id, DeleteCode: "CODE1234", Title: "t", Content: "c", CreatedAt: now.Add(-age),
	}))
}

func exists(t *testing.T, repo *repository.MemoryRepo, id string) bool {
	t.Helper()
	ok, err := repo.Exists(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func TestSweepOnceRemovesOnlyExpired(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seed(t, repo, "old01", 31*24*time.Hour)
	seed(t, repo, "old02", 45*24*time.Hour)
	seed(t, repo, "new01", 29*24*time.Hour)
	seed(t, repo, "edge1", 30*24*time.Hour)

	s := New(repo, WithClock(func() time.Time { return now }))
	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.False(t, exists(t, repo, "old01"))
	require.False(t, exists(t, repo, "old02"))
	require.True(t, exists(t, repo, "new01"))
	// exactly at the boundary survives
	require.True(t, exists(t, repo, "edge1"))
}

func TestSweepOnceIsIdempotent(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seed(t, repo, "old01", 40*24*time.Hour)
	s := New(repo, WithClock(func() time.Time { return now }))

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.SweepOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSweepOnceCustomRetention(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seed(t, repo, "hour2", 2*time.Hour)
	s := New(repo, WithRetention(time.Hour), WithClock(func() time.Time { return now }))
	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

type fakeArchiver struct {
	mu     sync.Mutex
	seen   []string
	failOn string
}

func (f *fakeArchiver) Archive(_ context.Context, d *document.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID == f.failOn {
		return errors.New("bucket unreachable")
	}
	f.seen = append(f.seen, d.ID)
	return nil
}

func TestSweepArchivesBeforeRemoval(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seed(t, repo, "old01", 31*24*time.Hour)
	seed(t, repo, "new01", time.Hour)
	arch := &fakeArchiver{}

	s := New(repo, WithArchiver(arch), WithClock(func() time.Time { return now }))
	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, []string{"old01"}, arch.seen)
}

func TestArchiveFailureDoesNotBlockRemoval(t *testing.T) {
	repo := repository.NewMemoryRepo()
	seed(t, repo, "old01", 31*24*time.Hour)
	seed(t, repo, "old02", 32*24*time.Hour)
	arch := &fakeArchiver{failOn: "old02"}

	s := New(repo, WithArchiver(arch), WithClock(func() time.Time { return now }))
	n, err := s.SweepOnce(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrArchiveIncomplete)
	require.Contains(t, err.Error(), "old02")
	require.EqualValues(t, 2, n)
	require.False(t, exists(t, repo, "old02"))
}

// stalledArchiver hangs until its context is cancelled, like an
// unresponsive bucket.
type stalledArchiver struct{}

func (stalledArchiver) Archive(ctx context.Context, _ *document.Document) error {
	<-ctx.Done()
	return ctx.Err()
}

func newSQLiteStore(t *testing.T) *repository.SQLiteRepo {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sweep.db"), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewSQLiteRepo(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestStalledArchiveDoesNotStarveRemoval(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
	}{
		{"default share", []Option{WithTimeout(200 * time.Millisecond)}},
		{"explicit archive timeout", []Option{WithTimeout(200 * time.Millisecond), WithArchiveTimeout(50 * time.Millisecond)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			repo := newSQLiteStore(t)
			require.NoError(t, repo.Insert(ctx, &document.Document{
				ID: "old01", DeleteCode: "CODE1234", Title: "t", Content: "c",
				FontSize: "16px", TextColor: "#000000", TextFormat: "plain", LineHeight: "1.5", Theme: "light",
				CreatedAt: now.Add(-31 * 24 * time.Hour),
			}))

			opts := append([]Option{WithArchiver(stalledArchiver{}), WithClock(func() time.Time { return now })}, tc.opts...)
			n, err := New(repo, opts...).SweepOnce(ctx)
			require.ErrorIs(t, err, ErrArchiveIncomplete)
			require.EqualValues(t, 1, n)

			ok, err := repo.Exists(ctx, "old01")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

type brokenStore struct{}

func (brokenStore) ListOlderThan(context.Context, time.Time) ([]*document.Document, error) {
	return nil, document.ErrUnavailable
}

func (brokenStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, document.ErrUnavailable
}

func TestSweepOnceSurfacesStoreError(t *testing.T) {
	s := New(brokenStore{})
	_, err := s.SweepOnce(context.Background())
	require.ErrorIs(t, err, document.ErrUnavailable)
}

// countingStore records sweeps so Run can be observed.
type countingStore struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingStore) ListOlderThan(context.Context, time.Time) ([]*document.Document, error) {
	return nil, nil
}

func (c *countingStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return 0, errors.New("transient")
	}
	return 0, nil
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRunSweepsAtStartAndKeepsGoingAfterErrors(t *testing.T) {
	store := &countingStore{fail: true}
	s := New(store, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return store.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
