package compute_test

import (
	"testing"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
	"github.com/plus3/computecs/compute/driver/host"
	"github.com/stretchr/testify/require"
)

type Position struct {
	X float32 `compute:"x"`
	Y float32 `compute:"y"`
}

type Particle struct {
	ID    uint32
	_     uint32
	Mass  float64
	Alive bool
}

func newTestContext(t *testing.T) *compute.Context {
	t.Helper()
	return newContextOn(t, host.New(host.Options{}))
}

func newContextOn(t *testing.T, drv driver.Driver) *compute.Context {
	t.Helper()
	dev, err := compute.NewPlatform(drv).Device(0)
	require.NoError(t, err)
	ctx, err := compute.NewContext(dev)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx
}
