package compute

import (
	"errors"
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute/driver"
	"github.com/plus3/computecs/compute/driver/host"
)

// ErrExtensionUnavailable is returned when a driver does not provide a
// requested extension.
var ErrExtensionUnavailable = errors.New("compute: extension unavailable")

// Platform enumerates the devices of one driver.
type Platform struct {
	drv driver.Driver

	extMu      sync.Mutex
	extensions map[string]extension
}

type extension struct {
	value any
	err   error
}

// NewPlatform wraps a driver.
func NewPlatform(drv driver.Driver) *Platform {
	return &Platform{
		drv:        drv,
		extensions: make(map[string]extension),
	}
}

var (
	defaultOnce     sync.Once
	defaultPlatform *Platform
)

// DefaultPlatform returns the process-wide platform backed by the host
// driver. It is created on first use.
func DefaultPlatform() *Platform {
	defaultOnce.Do(func() {
		defaultPlatform = NewPlatform(host.New(host.Options{}))
	})
	return defaultPlatform
}

// Driver returns the platform's driver.
func (p *Platform) Driver() driver.Driver {
	return p.drv
}

// DeviceCount returns the number of devices.
func (p *Platform) DeviceCount() (int, error) {
	infos, err := p.drv.Devices()
	if err != nil {
		return 0, fmt.Errorf("%w: enumerating %s devices: %w", ErrBackendInit, p.drv.Name(), err)
	}
	return len(infos), nil
}

// Device returns the device at index.
func (p *Platform) Device(index int) (*Device, error) {
	infos, err := p.drv.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerating %s devices: %w", ErrBackendInit, p.drv.Name(), err)
	}
	if index < 0 || index >= len(infos) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoDevice, index, len(infos))
	}
	return &Device{
		platform: p,
		index:    index,
		info:     infos[index],
	}, nil
}

// Devices returns every device of the platform.
func (p *Platform) Devices() ([]*Device, error) {
	n, err := p.DeviceCount()
	if err != nil {
		return nil, err
	}
	devices := make([]*Device, 0, n)
	for i := 0; i < n; i++ {
		dev, err := p.Device(i)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// Extension resolves a driver extension. Each name is resolved once per
// platform; later calls return the first outcome.
func (p *Platform) Extension(name string) (any, error) {
	p.extMu.Lock()
	defer p.extMu.Unlock()

	if ext, ok := p.extensions[name]; ok {
		return ext.value, ext.err
	}

	var ext extension
	if value, ok := p.drv.Extension(name); ok && value != nil {
		ext.value = value
	} else {
		ext.err = fmt.Errorf("%w: %s does not provide %s", ErrExtensionUnavailable, p.drv.Name(), name)
	}
	p.extensions[name] = ext
	return ext.value, ext.err
}

// DeviceCount returns the number of devices on the default platform.
func DeviceCount() (int, error) {
	return DefaultPlatform().DeviceCount()
}

// GetDevice returns a device of the default platform.
func GetDevice(index int) (*Device, error) {
	return DefaultPlatform().Device(index)
}

// Device is an enumerated accelerator.
type Device struct {
	platform *Platform
	index    int
	info     driver.DeviceInfo
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.info.Name
}

// Info returns the driver's description of the device.
func (d *Device) Info() driver.DeviceInfo {
	return d.info
}

// Index returns the device's position on its platform.
func (d *Device) Index() int {
	return d.index
}

// Platform returns the platform the device belongs to.
func (d *Device) Platform() *Platform {
	return d.platform
}
