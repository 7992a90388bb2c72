package repository

import (
	"context"
	"time"

	"github.com/gogotex/docshare/internal/document"
)

// Repository is the storage contract every backend implements. The id is the
// only lookup key; vanity slugs are stored as ids.
type Repository interface {
	// Insert stores a new record and fails with document.ErrConflict when the
	// id is already taken. The check is enforced by the backend itself.
	Insert(ctx context.Context, d *document.Document) error
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	// DeleteWithCode removes the record only when both id and code match, in
	// one store operation. It reports whether a record was removed.
	DeleteWithCode(ctx context.Context, id, code string) (bool, error)
	// DeleteOlderThan removes every record with created_at strictly before
	// threshold.
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error)
	ListOlderThan(ctx context.Context, threshold time.Time) ([]*document.Document, error)
	Ping(ctx context.Context) error
}

// ceilMillis rounds t up to the next whole millisecond. Backends that store
// millisecond timestamps compare against it so a sub-millisecond threshold
// still removes records strictly older than it.
func ceilMillis(t time.Time) time.Time {
	if r := t.Truncate(time.Millisecond); !r.Equal(t) {
		return r.Add(time.Millisecond)
	}
	return t
}
