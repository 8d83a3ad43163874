package host

import (
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute/driver"
)

type memory struct {
	mu       sync.RWMutex
	dev      *device
	data     []byte
	released bool
}

func (m *memory) Size() int {
	return len(m.data)
}

func (m *memory) Read(dst []byte, offset int) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.released {
		return driver.ErrReleased
	}
	if err := m.check(offset, len(dst)); err != nil {
		return err
	}
	copy(dst, m.data[offset:])
	return nil
}

func (m *memory) Write(src []byte, offset int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return driver.ErrReleased
	}
	if err := m.check(offset, len(src)); err != nil {
		return err
	}
	copy(m.data[offset:], src)
	return nil
}

func (m *memory) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		return nil
	}
	m.released = true
	m.dev.free(len(m.data))
	m.dev.sharing.forget(m)
	m.data = nil
	return nil
}

func (m *memory) check(offset, n int) error {
	if offset < 0 || n < 0 || offset+n > len(m.data) {
		return fmt.Errorf("range [%d, %d) of %d bytes: %w", offset, offset+n, len(m.data), driver.ErrOutOfRange)
	}
	return nil
}

// bytes exposes the backing store to kernels running on the queue goroutine.
func (m *memory) bytes() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.released {
		return nil, driver.ErrReleased
	}
	return m.data, nil
}
