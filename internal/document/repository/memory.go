package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gogotex/docshare/internal/document"
)

// MemoryRepo keeps documents in a map. Used for local runs and unit tests;
// contents are lost on restart.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.Document)}
}

func (m *MemoryRepo) Insert(_ context.Context, d *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[d.ID]; ok {
		return document.Errorf(document.ErrConflict, "ID %q is already taken", d.ID)
	}
	cp := *d
	m.store[d.ID] = &cp
	return nil
}

func (m *MemoryRepo) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[id]
	return ok, nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) DeleteWithCode(_ context.Context, id, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok || d.DeleteCode != code {
		return false, nil
	}
	delete(m.store, id)
	return true, nil
}

func (m *MemoryRepo) DeleteOlderThan(_ context.Context, threshold time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, d := range m.store {
		if d.CreatedAt.Before(threshold) {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepo) ListOlderThan(_ context.Context, threshold time.Time) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.store {
		if d.CreatedAt.Before(threshold) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }
