// Package interop shares device memory with a graphics API. A shared
// resource belongs to the graphics side until a compute lease acquires it;
// kernels may touch it only while a lease is held, and the acquire and
// release commands are ordered around launches on the context's queue.
package interop

import (
	"context"
	"errors"
	"fmt"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
)

var (
	ErrAlreadyAcquired = errors.New("interop: resource already acquired")
	ErrNotAcquired     = errors.New("interop: resource not acquired")
	// ErrExtensionUnavailable is the compute error of the same name, so
	// either package's sentinel matches.
	ErrExtensionUnavailable = compute.ErrExtensionUnavailable
)

// Resource is device memory shared with a graphics API.
type Resource interface {
	compute.Memory
	Acquire() (*Lease, error)
}

// sharingFor resolves the sharing extension of the context's platform.
func sharingFor(ctx *compute.Context) (driver.Sharing, error) {
	ext, err := ctx.Device().Platform().Extension(driver.ExtSharing)
	if err != nil {
		return nil, err
	}
	sharing, ok := ext.(driver.Sharing)
	if !ok {
		return nil, fmt.Errorf("%w: %s has type %T", ErrExtensionUnavailable, driver.ExtSharing, ext)
	}
	return sharing, nil
}

// Do acquires every resource, calls launch, then releases them. The
// acquires precede and the releases follow the launch on the queue. Do
// waits for the releases to complete or ctx to be done.
func Do(ctx context.Context, resources []Resource, launch func() (*compute.Event, error)) error {
	leases := make([]*Lease, 0, len(resources))
	for _, res := range resources {
		lease, err := res.Acquire()
		if err != nil {
			return errors.Join(err, releaseAll(ctx, leases))
		}
		leases = append(leases, lease)
	}

	ev, launchErr := launch()
	releaseErr := releaseAll(ctx, leases)

	if launchErr == nil && ev != nil {
		_, launchErr = ev.Wait(ctx)
	}
	return errors.Join(launchErr, releaseErr)
}

func releaseAll(ctx context.Context, leases []*Lease) error {
	var errs []error
	var last *compute.Event
	for _, lease := range leases {
		ev, err := lease.Release()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		last = ev
	}
	if last != nil {
		if _, err := last.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
