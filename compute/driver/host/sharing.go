package host

import (
	"sync"

	"github.com/plus3/computecs/compute/driver"
)

type sharing struct {
	mu       sync.Mutex
	shared   map[*memory]bool
	acquired map[*memory]bool
}

func newSharing() *sharing {
	return &sharing{
		shared:   make(map[*memory]bool),
		acquired: make(map[*memory]bool),
	}
}

func (s *sharing) Share(mem driver.Memory) error {
	m, ok := mem.(*memory)
	if !ok {
		return driver.ErrNotShared
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shared[m] = true
	return nil
}

func (s *sharing) Acquire(mem driver.Memory) error {
	m, ok := mem.(*memory)
	if !ok {
		return driver.ErrNotShared
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.shared[m] {
		return driver.ErrNotShared
	}
	if s.acquired[m] {
		return driver.ErrAcquired
	}
	s.acquired[m] = true
	return nil
}

func (s *sharing) Release(mem driver.Memory) error {
	m, ok := mem.(*memory)
	if !ok {
		return driver.ErrNotShared
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acquired[m] {
		return driver.ErrNotAcquired
	}
	delete(s.acquired, m)
	return nil
}

// usable reports whether a kernel may touch the memory.
func (s *sharing) usable(m *memory) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.shared[m] || s.acquired[m]
}

func (s *sharing) forget(m *memory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.shared, m)
	delete(s.acquired, m)
}
