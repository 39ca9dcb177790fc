package auth

import (
	"fmt"
	"sync"
)

// CredentialStore holds method-id -> Authenticator bindings and negotiates a
// single usable method out of a candidate set. The anonymous method is always
// registered. Safe for concurrent use.
type CredentialStore struct {
	mu       sync.RWMutex
	bindings map[string]Authenticator
}

// NewCredentialStore returns a store with only the anonymous binding.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		bindings: map[string]Authenticator{
			MethodAnonymous: Anonymous{},
		},
	}
}

// Add registers an authenticator for the given method id, replacing any
// existing binding for that id.
func (s *CredentialStore) Add(methodID string, a Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[methodID] = a
}

// Remove drops the binding for a method id. The anonymous binding cannot be
// removed.
func (s *CredentialStore) Remove(methodID string) {
	if methodID == MethodAnonymous {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bindings, methodID)
}

// Methods returns the registered method ids.
func (s *CredentialStore) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.bindings))
	for id := range s.bindings {
		out = append(out, id)
	}
	return out
}

// Negotiate picks one method out of candidates that the store holds a
// credential for. When several qualify, anonymous is dropped in favor of a
// real credential; the pick among the remainder is arbitrary. Returns
// ErrNoCommonMethod when the intersection is empty.
func (s *CredentialStore) Negotiate(candidates []string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var common []string
	for _, id := range candidates {
		if _, ok := s.bindings[id]; ok {
			common = append(common, id)
		}
	}
	if len(common) > 1 {
		filtered := common[:0]
		for _, id := range common {
			if id != MethodAnonymous {
				filtered = append(filtered, id)
			}
		}
		common = filtered
	}
	if len(common) == 0 {
		return "", fmt.Errorf("%w (candidates %v)", ErrNoCommonMethod, candidates)
	}
	return common[0], nil
}

// AuthenticatorFor returns the authenticator bound to a method id, or
// ErrUnknownMethod when the id was never registered.
func (s *CredentialStore) AuthenticatorFor(methodID string) (Authenticator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.bindings[methodID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, methodID)
	}
	return a, nil
}
