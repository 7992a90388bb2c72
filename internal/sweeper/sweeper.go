// Package sweeper removes documents older than the retention window.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogotex/docshare/internal/document"
	"github.com/gogotex/docshare/pkg/logger"
	"github.com/gogotex/docshare/pkg/metrics"
	"github.com/hashicorp/go-multierror"
)

const (
	DefaultRetention = 30 * 24 * time.Hour
	DefaultInterval  = time.Hour
	defaultTimeout   = 30 * time.Second

	// archive uploads get this share of the timeout unless set explicitly
	defaultArchiveShare = 2
)

// ErrArchiveIncomplete marks a sweep whose removal succeeded while some
// archive uploads failed.
var ErrArchiveIncomplete = errors.New("archive incomplete")

// Store is the part of the repository the sweeper needs.
type Store interface {
	ListOlderThan(ctx context.Context, threshold time.Time) ([]*document.Document, error)
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}

// Archiver keeps a copy of a document before it is removed.
type Archiver interface {
	Archive(ctx context.Context, d *document.Document) error
}

type Sweeper struct {
	store     Store
	archiver  Archiver
	retention time.Duration
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time

	// zero means timeout/defaultArchiveShare
	archiveTimeout time.Duration

	// serializes manual and scheduled runs
	mu sync.Mutex
}

type Option func(*Sweeper)

func WithRetention(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.retention = d
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTimeout bounds the removal phase of a sweep. The archive phase runs
// under its own deadline before it, see WithArchiveTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithArchiveTimeout bounds the archive uploads of a sweep. A slow archive
// endpoint is cut off at this deadline and removal still gets its full
// timeout.
func WithArchiveTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.archiveTimeout = d
		}
	}
}

// WithArchiver enables archiving. A nil archiver leaves it disabled.
func WithArchiver(a Archiver) Option {
	return func(s *Sweeper) { s.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func New(store Store, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:     store,
		retention: DefaultRetention,
		interval:  DefaultInterval,
		timeout:   defaultTimeout,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Threshold returns the cutoff for a sweep started at now. Records created
// strictly before it are expired.
func (s *Sweeper) Threshold(now time.Time) time.Time {
	return now.Add(-s.retention)
}

// SweepOnce removes every expired record and returns how many were removed.
// Archive failures are reported but never block removal.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := s.Threshold(s.now())
	var archiveErr error
	if s.archiver != nil {
		actx, cancel := context.WithTimeout(ctx, s.archivePhaseTimeout())
		archiveErr = s.archive(actx, threshold)
		cancel()
	}

	dctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.store.DeleteOlderThan(dctx, threshold)
	if err != nil {
		metrics.SweepRuns.WithLabelValues("error").Inc()
		logger.WithFields(logger.Fields{"threshold": threshold.Format(time.RFC3339)}).Errorf("sweep failed: %v", err)
		return 0, fmt.Errorf("delete expired documents: %w", err)
	}
	metrics.DocumentsSwept.Add(float64(n))
	metrics.SweepRuns.WithLabelValues("ok").Inc()
	if n > 0 {
		logger.Infof("removed %d expired documents", n)
	}
	return n, archiveErr
}

func (s *Sweeper) archivePhaseTimeout() time.Duration {
	if s.archiveTimeout > 0 {
		return s.archiveTimeout
	}
	return s.timeout / defaultArchiveShare
}

func (s *Sweeper) archive(ctx context.Context, threshold time.Time) error {
	docs, err := s.store.ListOlderThan(ctx, threshold)
	if err != nil {
		logger.Warnf("list expired documents for archive: %v", err)
		return fmt.Errorf("%w: list expired documents: %v", ErrArchiveIncomplete, err)
	}
	var result *multierror.Error
	for _, d := range docs {
		if err := s.archiver.Archive(ctx, d); err != nil {
			metrics.ArchiveFailures.Inc()
			result = multierror.Append(result, fmt.Errorf("archive %s: %w", d.ID, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		logger.Warnf("archive of expired documents incomplete: %v", err)
		return fmt.Errorf("%w: %v", ErrArchiveIncomplete, err)
	}
	return nil
}

// Run sweeps once immediately and then on every interval until ctx is done.
// A failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	logger.Infof("starting expiry sweeper (retention=%s interval=%s)", s.retention, s.interval)
	s.runLogged(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("expiry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Sweeper) runLogged(ctx context.Context) {
	if _, err := s.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("expiry sweep: %v", err)
	}
}
