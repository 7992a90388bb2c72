package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/docshare/internal/document"
	"github.com/gogotex/docshare/internal/document/repository"
	"github.com/gogotex/docshare/pkg/logger"
	"github.com/gogotex/docshare/pkg/metrics"
)

// Service defines the document operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, in document.Input) (*document.Created, error)
	Get(ctx context.Context, id string) (*document.View, error)
	Delete(ctx context.Context, id, code string) error
	CheckAvailability(ctx context.Context, slug string) (document.Availability, error)
	Ping(ctx context.Context) error
}

// MismatchPolicy decides what a delete with a wrong code reports.
type MismatchPolicy int

const (
	// HideMismatch reports a wrong code as not found.
	HideMismatch MismatchPolicy = iota
	// RevealMismatch reports a wrong code as forbidden when the record exists.
	RevealMismatch
)

const (
	DefaultOperationTimeout = 5 * time.Second
	maxInsertAttempts       = 3
)

// DocumentService owns record lifetime on top of a Repository.
type DocumentService struct {
	repo      repository.Repository
	opTimeout time.Duration
	policy    MismatchPolicy
	now       func() time.Time
}

type Option func(*DocumentService)

// WithOperationTimeout bounds every repository call.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *DocumentService) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

func WithMismatchPolicy(p MismatchPolicy) Option {
	return func(s *DocumentService) { s.policy = p }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentService) { s.now = now }
}

func New(repo repository.Repository, opts ...Option) *DocumentService {
	s := &DocumentService{
		repo:      repo,
		opTimeout: DefaultOperationTimeout,
		policy:    HideMismatch,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a service backed by the in-memory repository.
func NewMemoryService(opts ...Option) *DocumentService {
	return New(repository.NewMemoryRepo(), opts...)
}

// call runs op under the operation timeout and turns an expired deadline into
// document.ErrUnavailable.
func (s *DocumentService) call(ctx context.Context, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	err := op(ctx)
	if err != nil && !errors.Is(err, document.ErrUnavailable) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", document.ErrUnavailable, err)
	}
	return err
}

func (s *DocumentService) exists(ctx context.Context, id string) (bool, error) {
	var taken bool
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		taken, err = s.repo.Exists(ctx, id)
		return err
	})
	return taken, err
}

func (s *DocumentService) insert(ctx context.Context, d *document.Document) error {
	return s.call(ctx, func(ctx context.Context) error { return s.repo.Insert(ctx, d) })
}

// Create validates the input, resolves the id and persists the record. The
// returned delete code is never disclosed again.
func (s *DocumentService) Create(ctx context.Context, in document.Input) (*document.Created, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	code, err := document.GenerateDeleteCode()
	if err != nil {
		return nil, fmt.Errorf("generate delete code: %w", err)
	}
	// Mongo keeps millisecond precision; truncate so every backend echoes the same instant.
	d := in.Build(code, s.now().UTC().Truncate(time.Millisecond))

	if in.CustomURL != nil {
		d.ID = *in.CustomURL
		d.Custom = true
		taken, err := s.exists(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, document.Errorf(document.ErrConflict, "Custom URL %q is already taken", d.ID)
		}
		if err := s.insert(ctx, d); err != nil {
			return nil, err
		}
		metrics.DocumentsPublished.WithLabelValues("custom").Inc()
		logger.WithFields(logger.Fields{"document_id": d.ID, "custom": true}).Info("document published")
		return &document.Created{ID: d.ID, DeleteCode: code}, nil
	}

	for attempt := 1; ; attempt++ {
		id, err := document.GenerateID(ctx, s.exists, document.DefaultIDLength)
		if err != nil {
			return nil, fmt.Errorf("allocate id: %w", err)
		}
		d.ID = id
		err = s.insert(ctx, d)
		if err == nil {
			break
		}
		if !errors.Is(err, document.ErrConflict) || attempt == maxInsertAttempts {
			return nil, err
		}
		logger.Warnf("generated id %s lost an insert race (attempt %d/%d), allocating another", id, attempt, maxInsertAttempts)
	}
	metrics.DocumentsPublished.WithLabelValues("generated").Inc()
	logger.WithFields(logger.Fields{"document_id": d.ID}).Info("document published")
	return &document.Created{ID: d.ID, DeleteCode: code}, nil
}

// Get returns the public view of a document.
func (s *DocumentService) Get(ctx context.Context, id string) (*document.View, error) {
	var d *document.Document
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		d, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			metrics.DocumentsFetched.WithLabelValues("not_found").Inc()
			return nil, document.Errorf(document.ErrNotFound, "Document not found")
		}
		metrics.DocumentsFetched.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DocumentsFetched.WithLabelValues("ok").Inc()
	v := d.View()
	return &v, nil
}

// Delete removes the document when code matches, in one filtered store
// operation. Under RevealMismatch a failed delete is followed by an existence
// probe; a concurrent removal in between reports not found.
func (s *DocumentService) Delete(ctx context.Context, id, code string) error {
	if code == "" {
		return document.Errorf(document.ErrInvalidInput, "Delete code required")
	}
	var deleted bool
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.DeleteWithCode(ctx, id, code)
		return err
	})
	if err != nil {
		metrics.DocumentsDeleted.WithLabelValues("error").Inc()
		return err
	}
	if deleted {
		metrics.DocumentsDeleted.WithLabelValues("ok").Inc()
		logger.WithFields(logger.Fields{"document_id": id}).Info("document deleted")
		return nil
	}

	if s.policy == RevealMismatch {
		taken, err := s.exists(ctx, id)
		if err != nil {
			return err
		}
		if taken {
			metrics.DocumentsDeleted.WithLabelValues("forbidden").Inc()
			return document.Errorf(document.ErrForbidden, "Invalid delete code")
		}
		metrics.DocumentsDeleted.WithLabelValues("not_found").Inc()
		return document.Errorf(document.ErrNotFound, "Document not found")
	}
	metrics.DocumentsDeleted.WithLabelValues("not_found").Inc()
	return document.Errorf(document.ErrNotFound, "Document not found or invalid delete code")
}

// CheckAvailability probes a vanity slug. A malformed slug is reported as
// unavailable and invalid, never as an error.
func (s *DocumentService) CheckAvailability(ctx context.Context, slug string) (document.Availability, error) {
	if !document.ValidateCustomURL(&slug) {
		return document.Availability{Available: false, Invalid: true}, nil
	}
	taken, err := s.exists(ctx, slug)
	if err != nil {
		return document.Availability{}, err
	}
	return document.Availability{Available: !taken}, nil
}

// Ping checks the store is reachable.
func (s *DocumentService) Ping(ctx context.Context) error {
	return s.call(ctx, s.repo.Ping)
}
