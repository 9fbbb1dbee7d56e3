package slugmigration

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/carecrest/hospital-cms/platform/go/persistence"
)

type fakeRow struct {
	id    uuid.UUID
	title string
	slug  *string
}

// memoryStore keeps rows in insertion order, which stands in for created_at ordering.
type memoryStore struct {
	mu         sync.Mutex
	rows       map[persistence.SlugKind][]*fakeRow
	listErr    map[persistence.SlugKind]error
	failUpdate map[uuid.UUID]error
	listCalls  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows:       map[persistence.SlugKind][]*fakeRow{},
		listErr:    map[persistence.SlugKind]error{},
		failUpdate: map[uuid.UUID]error{},
	}
}

func (s *memoryStore) add(kind persistence.SlugKind, title string, slug *string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.rows[kind] = append(s.rows[kind], &fakeRow{id: id, title: title, slug: slug})
	return id
}

func (s *memoryStore) slugOf(kind persistence.SlugKind, id uuid.UUID) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows[kind] {
		if r.id == id {
			return r.slug
		}
	}
	return nil
}

func (s *memoryStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *memoryStore) ListMissingSlugs(_ context.Context, kind persistence.SlugKind) ([]persistence.SlugRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if err := s.listErr[kind]; err != nil {
		return nil, err
	}
	out := []persistence.SlugRecord{}
	for _, r := range s.rows[kind] {
		if r.slug == nil || *r.slug == "" {
			out = append(out, persistence.SlugRecord{ID: r.id, Title: r.title})
		}
	}
	return out, nil
}

func (s *memoryStore) UpdateSlug(_ context.Context, kind persistence.SlugKind, id uuid.UUID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failUpdate[id]; err != nil {
		return err
	}
	for _, r := range s.rows[kind] {
		if r.id == id {
			v := value
			r.slug = &v
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *memoryStore) SlugExists(_ context.Context, kind persistence.SlugKind, candidate string, excludeID *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows[kind] {
		if excludeID != nil && r.id == *excludeID {
			continue
		}
		if r.slug != nil && *r.slug == candidate {
			return true, nil
		}
	}
	return false, nil
}

var errDiskFull = errors.New("disk full")

func strPtr(s string) *string { return &s }
