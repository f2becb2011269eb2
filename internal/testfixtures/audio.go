package testfixtures

import (
	"context"
	"sync"
)

// AudioCatalogStub is an in-memory audio asset lookup for tests.
type AudioCatalogStub struct {
	mu   sync.RWMutex
	refs map[string]struct{}

	// FailWith, when set, is returned by Exists to simulate a broken
	// catalog collaborator.
	FailWith error
}

// NewAudioCatalogStub builds a stub that knows the given references.
func NewAudioCatalogStub(refs ...string) *AudioCatalogStub {
	known := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		known[ref] = struct{}{}
	}
	return &AudioCatalogStub{refs: known}
}

// Exists reports whether the reference was registered with the stub.
func (s *AudioCatalogStub) Exists(ctx context.Context, ref string) (bool, error) {
	if s.FailWith != nil {
		return false, s.FailWith
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.refs[ref]
	return ok, nil
}

// Add registers additional references.
func (s *AudioCatalogStub) Add(refs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		s.refs[ref] = struct{}{}
	}
}

// Remove forgets references, simulating deleted audio files.
func (s *AudioCatalogStub) Remove(refs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		delete(s.refs, ref)
	}
}
