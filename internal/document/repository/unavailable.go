package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/docshare/internal/document"
)

// UnavailableRepo is the explicit degraded mode used when the store could not
// be reached at startup and ALLOW_DEGRADED_START is set: every call fails
// with document.ErrUnavailable so handlers answer 503.
type UnavailableRepo struct {
	cause error
}

func NewUnavailableRepo(cause error) *UnavailableRepo {
	return &UnavailableRepo{cause: cause}
}

func (u *UnavailableRepo) err() error {
	return fmt.Errorf("%w: %v", document.ErrUnavailable, u.cause)
}

func (u *UnavailableRepo) Insert(context.Context, *document.Document) error { return u.err() }

func (u *UnavailableRepo) Exists(context.Context, string) (bool, error) { return false, u.err() }

func (u *UnavailableRepo) Get(context.Context, string) (*document.Document, error) {
	return nil, u.err()
}

func (u *UnavailableRepo) DeleteWithCode(context.Context, string, string) (bool, error) {
	return false, u.err()
}

func (u *UnavailableRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, u.err()
}

func (u *UnavailableRepo) ListOlderThan(context.Context, time.Time) ([]*document.Document, error) {
	return nil, u.err()
}

func (u *UnavailableRepo) Ping(context.Context) error { return u.err() }
