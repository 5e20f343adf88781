package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/urmzd/rgbprofile/pkg/device"
)

// ProfileStore persists named lighting snapshots.
type ProfileStore interface {
	// List returns profile names in the order the daemon reports them
	List(ctx context.Context) ([]string, error)

	// Get returns a saved snapshot or device.ErrProfileNotFound
	Get(ctx context.Context, name string) (device.Snapshot, error)

	// Save creates or replaces a profile
	Save(ctx context.Context, name string, snap device.Snapshot) error

	// Delete removes a profile or returns device.ErrProfileNotFound
	Delete(ctx context.Context, name string) error
}

// MemoryStore is a ProfileStore that keeps profiles in insertion order.
type MemoryStore struct {
	mu       sync.Mutex
	names    []string
	profiles map[string]device.Snapshot
}

// NewMemoryStore creates a store seeded with empty profiles for each name.
func NewMemoryStore(names ...string) *MemoryStore {
	s := &MemoryStore{profiles: make(map[string]device.Snapshot)}
	for _, n := range names {
		_ = s.Save(context.Background(), n, nil)
	}
	return s
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.names), nil
}

func (s *MemoryStore) Get(ctx context.Context, name string) (device.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", device.ErrProfileNotFound, name)
	}
	return slices.Clone(snap), nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, snap device.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[name]; !ok {
		s.names = append(s.names, name)
	}
	s.profiles[name] = slices.Clone(snap)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[name]; !ok {
		return fmt.Errorf("%w: %q", device.ErrProfileNotFound, name)
	}
	delete(s.profiles, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return nil
}
