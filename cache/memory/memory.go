// Package memory provides an in-memory cache.Store backed by an LRU with
// TTL support.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/virtualobs/voclient/cache"
)

// Store implements cache.Store in process memory.
type Store struct {
	mu    sync.Mutex
	items *lru.Cache[string, *cache.Item]
	done  chan struct{}
}

// New creates an in-memory store holding at most maxItems entries.
func New(maxItems int) (*Store, error) {
	items, err := lru.New[string, *cache.Item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("cache: create LRU: %w", err)
	}
	s := &Store{items: items, done: make(chan struct{})}
	go s.cleanupExpired()
	return s, nil
}

func (s *Store) Get(ctx context.Context, key string) (*cache.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items.Get(key)
	if !ok {
		return nil, nil
	}
	if item.Expired() {
		s.items.Remove(key)
		return nil, nil
	}
	return item, nil
}

func (s *Store) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	item := &cache.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		item.ExpiresAt = &exp
	}
	s.mu.Lock()
	s.items.Add(key, item)
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.items.Remove(key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() error {
	close(s.done)
	return nil
}

func (s *Store) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			for _, key := range s.items.Keys() {
				if item, ok := s.items.Peek(key); ok && item.Expired() {
					s.items.Remove(key)
				}
			}
			s.mu.Unlock()
		}
	}
}
