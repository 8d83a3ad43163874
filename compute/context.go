package compute

import (
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute/driver"
	"go.uber.org/zap"
)

// Context is an opened device with a single in-order command queue. Every
// buffer and kernel is created against a context and shares its queue, so
// writes, reads and launches complete in the order they were issued.
type Context struct {
	device *Device
	drv    driver.Device
	queue  *queue
	log    *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithLogger sets the logger used by the context and everything created
// against it.
func WithLogger(log *zap.Logger) ContextOption {
	return func(c *Context) {
		if log != nil {
			c.log = log
		}
	}
}

// NewContext opens dev and starts its command queue.
func NewContext(dev *Device, opts ...ContextOption) (*Context, error) {
	if dev == nil || dev.platform == nil {
		return nil, fmt.Errorf("%w: nil device", ErrBackendInit)
	}

	drv, err := dev.platform.drv.Open(dev.index)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", ErrBackendInit, dev.Name(), err)
	}

	c := &Context{
		device: dev,
		drv:    drv,
		queue:  newQueue(),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log.Debug("compute context created",
		zap.String("driver", dev.platform.drv.Name()),
		zap.String("device", dev.Name()))
	return c, nil
}

// Device returns the device the context was opened on.
func (c *Context) Device() *Device {
	return c.device
}

// Logger returns the context logger.
func (c *Context) Logger() *zap.Logger {
	return c.log
}

// Enqueue submits a native command that runs on the queue with direct
// access to the driver device. Extensions use it to order their own
// commands relative to transfers and launches.
func (c *Context) Enqueue(op func(driver.Device) error) (*Event, error) {
	return enqueue(c.queue, func() (struct{}, error) {
		return struct{}{}, op(c.drv)
	})
}

// Finish blocks until every command issued so far has completed.
func (c *Context) Finish() error {
	ev, err := c.Enqueue(func(driver.Device) error { return nil })
	if err != nil {
		return err
	}
	_, err = ev.Get()
	return err
}

// Close drains the queue and closes the device. Buffers and kernels
// created against the context must not be used afterwards.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.queue.close()
		c.closeErr = c.drv.Close()
		c.log.Debug("compute context closed", zap.String("device", c.device.Name()))
	})
	return c.closeErr
}
