package compute_test

import (
	"sync"
	"testing"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayBufferSetFetch(t *testing.T) {
	ctx := newTestContext(t)

	arr, err := compute.NewArrayBuffer[Position](ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, arr.Size())

	require.NoError(t, arr.Set(2, Position{X: 1.5, Y: -3}))

	f, err := arr.Fetch(2)
	require.NoError(t, err)
	pos, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1.5, Y: -3}, pos)

	// untouched slots read back as zero
	f, err = arr.Fetch(0)
	require.NoError(t, err)
	pos, err = f.Get()
	require.NoError(t, err)
	assert.Equal(t, Position{}, pos)
}

func TestArrayBufferRoundTrip(t *testing.T) {
	ctx := newTestContext(t)

	arr, err := compute.NewArrayBuffer[Particle](ctx, 16)
	require.NoError(t, err)

	for i := 0; i < arr.Size(); i++ {
		p := Particle{ID: uint32(i), Mass: float64(i) * 0.25, Alive: i%2 == 0}
		require.NoError(t, arr.Set(i, p))

		f, err := arr.Fetch(i)
		require.NoError(t, err)
		got, err := f.Get()
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestArrayBufferIndexErrors(t *testing.T) {
	ctx := newTestContext(t)

	arr, err := compute.NewArrayBuffer[float32](ctx, 3)
	require.NoError(t, err)

	assert.ErrorIs(t, arr.Set(3, 1), compute.ErrIndex)
	assert.ErrorIs(t, arr.Set(-1, 1), compute.ErrIndex)

	_, err = arr.Fetch(3)
	assert.ErrorIs(t, err, compute.ErrIndex)

	assert.ErrorIs(t, arr.SetAll([]float32{1, 2, 3, 4}), compute.ErrIndex)
}

func TestArrayBufferSetAllPrefix(t *testing.T) {
	ctx := newTestContext(t)

	arr, err := compute.NewArrayBuffer[int32](ctx, 5)
	require.NoError(t, err)

	require.NoError(t, arr.SetAll([]int32{9, 9, 9, 9, 9}))
	require.NoError(t, arr.SetAll([]int32{1, 2}))

	f, err := arr.FetchAll()
	require.NoError(t, err)
	values, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 9, 9, 9}, values)
}

func TestArrayBufferAllocationErrors(t *testing.T) {
	drv := host.New(host.Options{Devices: []host.DeviceSpec{{Name: "tiny", GlobalMemSize: 64}}})
	ctx := newContextOn(t, drv)

	_, err := compute.NewArrayBuffer[float64](ctx, 9)
	assert.ErrorIs(t, err, compute.ErrAllocation)

	_, err = compute.NewArrayBuffer[float64](ctx, 0)
	assert.ErrorIs(t, err, compute.ErrAllocation)

	_, err = compute.NewArrayBuffer[string](ctx, 1)
	assert.ErrorIs(t, err, compute.ErrAllocation)

	// releasing returns the budget
	arr, err := compute.NewArrayBuffer[float64](ctx, 8)
	require.NoError(t, err)
	require.NoError(t, arr.Release())
	require.NoError(t, arr.Release())

	arr, err = compute.NewArrayBuffer[float64](ctx, 8)
	require.NoError(t, err)
	require.NoError(t, arr.Release())
}

func TestArrayBufferTransferFault(t *testing.T) {
	drv := &faultyDriver{}
	ctx := newContextOn(t, drv)

	arr, err := compute.NewArrayBuffer[int32](ctx, 4)
	require.NoError(t, err)
	require.NoError(t, arr.Set(1, 7))

	drv.failWrites.Store(true)
	assert.ErrorIs(t, arr.Set(1, 8), compute.ErrTransfer)
	drv.failWrites.Store(false)

	// the failed write left the prior value in place
	f, err := arr.Fetch(1)
	require.NoError(t, err)
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, int32(7), v)

	drv.failReads.Store(true)
	f, err = arr.Fetch(1)
	require.NoError(t, err, "read faults surface through the future")
	_, err = f.Get()
	assert.ErrorIs(t, err, compute.ErrTransfer)
}

func TestArrayBufferConcurrentFetch(t *testing.T) {
	ctx := newTestContext(t)

	arr, err := compute.NewArrayBuffer[uint32](ctx, 64)
	require.NoError(t, err)
	values := make([]uint32, 64)
	for i := range values {
		values[i] = uint32(i * i)
	}
	require.NoError(t, arr.SetAll(values))

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := arr.Fetch(i)
			if !assert.NoError(t, err) {
				return
			}
			v, err := f.Get()
			assert.NoError(t, err)
			assert.Equal(t, uint32(i*i), v)
		}(i)
	}
	wg.Wait()
}

func TestBufferSingleValue(t *testing.T) {
	ctx := newTestContext(t)

	buf, err := compute.NewBuffer(ctx, Position{X: 2})
	require.NoError(t, err)
	defer buf.Release()

	f, err := buf.Fetch()
	require.NoError(t, err)
	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, Position{X: 2}, v)

	require.NoError(t, buf.Set(Position{Y: 5}))
	f, err = buf.Fetch()
	require.NoError(t, err)
	v, err = f.Get()
	require.NoError(t, err)
	assert.Equal(t, Position{Y: 5}, v)
}

func TestContextBackendInit(t *testing.T) {
	dev, err := compute.NewPlatform(&faultyDriver{failOpen: true}).Device(0)
	require.NoError(t, err)

	_, err = compute.NewContext(dev)
	assert.ErrorIs(t, err, compute.ErrBackendInit)
}

func TestContextClosed(t *testing.T) {
	dev, err := compute.NewPlatform(host.New(host.Options{})).Device(0)
	require.NoError(t, err)
	ctx, err := compute.NewContext(dev)
	require.NoError(t, err)

	arr, err := compute.NewArrayBuffer[int32](ctx, 2)
	require.NoError(t, err)
	require.NoError(t, ctx.Close())
	require.NoError(t, ctx.Close())

	assert.ErrorIs(t, arr.Set(0, 1), compute.ErrClosed)
	_, err = arr.Fetch(0)
	assert.ErrorIs(t, err, compute.ErrClosed)
}
