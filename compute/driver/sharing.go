package driver

import "errors"

// ExtSharing names the extension that lets device memory be shared with a
// graphics API.
const ExtSharing = "compute_host_sharing"

var (
	// ErrNotShared is returned when acquiring memory that was never shared.
	ErrNotShared = errors.New("memory is not shared")
	// ErrAcquired is returned when acquiring memory that is already acquired.
	ErrAcquired = errors.New("memory already acquired")
	// ErrNotAcquired is returned when releasing, or launching over, shared memory that is not acquired.
	ErrNotAcquired = errors.New("shared memory not acquired")
)

// Sharing is the interface of the ExtSharing extension. Shared memory is
// owned by the graphics side until acquired; kernels may only touch it
// between Acquire and Release.
type Sharing interface {
	Share(mem Memory) error
	Acquire(mem Memory) error
	Release(mem Memory) error
}
