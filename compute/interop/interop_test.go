package interop_test

import (
	"context"
	"testing"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
	"github.com/plus3/computecs/compute/driver/host"
	"github.com/plus3/computecs/compute/interop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillKernel = `
function fill(tex)
  local i = get_global_id(0)
  if i >= #tex then return end
  tex[i] = 0xff0000ff
end
`

type recordingSurface struct {
	pixels []byte
}

func (s *recordingSurface) WritePixels(pixels []byte) {
	s.pixels = append([]byte(nil), pixels...)
}

type noSharing struct {
	*host.Driver
}

func (noSharing) Extension(string) (any, bool) { return nil, false }

func newContext(t *testing.T, drv driver.Driver) *compute.Context {
	t.Helper()
	dev, err := compute.NewPlatform(drv).Device(0)
	require.NoError(t, err)
	ctx, err := compute.NewContext(dev)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}

func TestTextureInitialPixels(t *testing.T) {
	ctx := newContext(t, host.New(host.Options{}))

	initial := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	tex, err := interop.NewTexture2D(ctx, 2, 2, initial)
	require.NoError(t, err)
	defer tex.Release()

	surface := &recordingSurface{}
	require.NoError(t, tex.Present(surface))
	assert.Equal(t, initial, surface.pixels)
}

func TestTextureDo(t *testing.T) {
	ctx := newContext(t, host.New(host.Options{}))

	tex, err := interop.NewTexture2D(ctx, 4, 2, nil)
	require.NoError(t, err)

	k, err := compute.NewKernel(ctx, fillKernel, "fill")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, tex))

	err = interop.Do(context.Background(), []interop.Resource{tex}, func() (*compute.Event, error) {
		return k.Run(tex.Width() * tex.Height())
	})
	require.NoError(t, err)

	surface := &recordingSurface{}
	require.NoError(t, tex.Present(surface))
	require.Len(t, surface.pixels, 4*2*4)
	assert.Equal(t, []byte{0xff, 0, 0, 0xff}, surface.pixels[:4])
	assert.Equal(t, []byte{0xff, 0, 0, 0xff}, surface.pixels[len(surface.pixels)-4:])
}

func TestTextureLaunchWithoutLease(t *testing.T) {
	ctx := newContext(t, host.New(host.Options{}))

	tex, err := interop.NewTexture2D(ctx, 2, 2, nil)
	require.NoError(t, err)

	k, err := compute.NewKernel(ctx, fillKernel, "fill")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, tex))

	ev, err := k.Run(4)
	require.NoError(t, err)
	_, err = ev.Get()
	assert.ErrorIs(t, err, compute.ErrLaunch)
	assert.ErrorIs(t, err, driver.ErrNotAcquired)
}

func TestTextureLeases(t *testing.T) {
	ctx := newContext(t, host.New(host.Options{}))

	tex, err := interop.NewTexture2D(ctx, 1, 1, nil)
	require.NoError(t, err)

	lease, err := tex.Acquire()
	require.NoError(t, err)
	_, err = lease.Acquired().Get()
	require.NoError(t, err)

	_, err = tex.Acquire()
	assert.ErrorIs(t, err, interop.ErrAlreadyAcquired)
	assert.ErrorIs(t, tex.Present(&recordingSurface{}), interop.ErrAlreadyAcquired)

	ev, err := lease.Release()
	require.NoError(t, err)
	_, err = ev.Get()
	require.NoError(t, err)

	_, err = lease.Release()
	assert.ErrorIs(t, err, interop.ErrNotAcquired)

	// released resources can be acquired again
	lease, err = tex.Acquire()
	require.NoError(t, err)
	_, err = lease.Release()
	require.NoError(t, err)
}

func TestDoReleasesOnAcquireFailure(t *testing.T) {
	ctx := newContext(t, host.New(host.Options{}))

	a, err := interop.NewTexture2D(ctx, 1, 1, nil)
	require.NoError(t, err)
	b, err := interop.NewTexture2D(ctx, 1, 1, nil)
	require.NoError(t, err)

	held, err := b.Acquire()
	require.NoError(t, err)

	launched := false
	err = interop.Do(context.Background(), []interop.Resource{a, b}, func() (*compute.Event, error) {
		launched = true
		return nil, nil
	})
	assert.ErrorIs(t, err, interop.ErrAlreadyAcquired)
	assert.False(t, launched)

	// a was handed back
	lease, err := a.Acquire()
	require.NoError(t, err)
	_, err = lease.Release()
	require.NoError(t, err)
	_, err = held.Release()
	require.NoError(t, err)
}

func TestExtensionUnavailable(t *testing.T) {
	ctx := newContext(t, noSharing{host.New(host.Options{})})

	_, err := interop.NewTexture2D(ctx, 1, 1, nil)
	assert.ErrorIs(t, err, interop.ErrExtensionUnavailable)
	assert.ErrorIs(t, err, compute.ErrExtensionUnavailable)
}
