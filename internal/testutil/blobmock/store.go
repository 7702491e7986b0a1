package blobmock

import (
	"context"
	"sync"

	"lending-backoffice/internal/infrastructure/blob"
)

var _ blob.Store = (*Store)(nil)

// Store records uploads in memory and hands back a deterministic URL.
type Store struct {
	mu      sync.Mutex
	Objects map[string][]byte

	PutFn    func(ctx context.Context, path string, data []byte, contentType string) (string, error)
	DeleteFn func(ctx context.Context, path string) error
}

func New() *Store { return &Store{Objects: make(map[string][]byte)} }

func (s *Store) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if s.PutFn != nil {
		return s.PutFn(ctx, path, data, contentType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.Objects[path] = cp
	return "mem://" + path, nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, path)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, path)
	return nil
}
