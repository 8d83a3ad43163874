// Package host implements a software accelerator driver. Device memory is
// plain host memory accounted against a per-device budget and kernels are
// Lua programs executed once per work item by gopher-lua.
package host

import (
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute/driver"
	"go.uber.org/zap"
)

// Name is the driver name reported by Driver.Name.
const Name = "host"

// DefaultGlobalMemSize is the memory budget of a device when none is given.
const DefaultGlobalMemSize = 256 << 20

// DeviceSpec configures one enumerable device.
type DeviceSpec struct {
	Name          string
	GlobalMemSize int64
}

// Options configures the driver.
type Options struct {
	// Devices lists the devices to expose. A single default device is
	// exposed when empty.
	Devices []DeviceSpec
	Logger  *zap.Logger
}

// Driver is the software accelerator.
type Driver struct {
	specs   []DeviceSpec
	log     *zap.Logger
	sharing *sharing
}

// New creates a host driver.
func New(opts Options) *Driver {
	specs := opts.Devices
	if len(specs) == 0 {
		specs = []DeviceSpec{{Name: "Host Compute Device"}}
	}
	specs = append([]DeviceSpec(nil), specs...)
	for i := range specs {
		if specs[i].GlobalMemSize <= 0 {
			specs[i].GlobalMemSize = DefaultGlobalMemSize
		}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Driver{
		specs:   specs,
		log:     log,
		sharing: newSharing(),
	}
}

func (d *Driver) Name() string {
	return Name
}

func (d *Driver) Devices() ([]driver.DeviceInfo, error) {
	infos := make([]driver.DeviceInfo, len(d.specs))
	for i, spec := range d.specs {
		infos[i] = info(spec)
	}
	return infos, nil
}

func (d *Driver) Open(index int) (driver.Device, error) {
	if index < 0 || index >= len(d.specs) {
		return nil, fmt.Errorf("open device %d: %w", index, driver.ErrNoSuchDevice)
	}
	spec := d.specs[index]
	d.log.Debug("opened host device", zap.Int("index", index), zap.String("name", spec.Name))
	return &device{
		info:    info(spec),
		budget:  spec.GlobalMemSize,
		log:     d.log,
		sharing: d.sharing,
	}, nil
}

func (d *Driver) Extension(name string) (any, bool) {
	if name == driver.ExtSharing {
		return d.sharing, true
	}
	return nil, false
}

func info(spec DeviceSpec) driver.DeviceInfo {
	return driver.DeviceInfo{
		Name:          spec.Name,
		Vendor:        "computecs",
		Version:       "Lua 5.1 (gopher-lua)",
		GlobalMemSize: spec.GlobalMemSize,
		MaxWorkDims:   3,
	}
}

type device struct {
	mu      sync.Mutex
	info    driver.DeviceInfo
	budget  int64
	used    int64
	closed  bool
	log     *zap.Logger
	sharing *sharing
}

func (d *device) Info() driver.DeviceInfo {
	return d.info
}

func (d *device) Alloc(size int) (driver.Memory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, driver.ErrReleased
	}
	if size <= 0 {
		return nil, fmt.Errorf("alloc %d bytes: %w", size, driver.ErrOutOfMemory)
	}
	if d.used+int64(size) > d.budget {
		return nil, fmt.Errorf("alloc %d bytes with %d of %d in use: %w", size, d.used, d.budget, driver.ErrOutOfMemory)
	}
	d.used += int64(size)

	return &memory{
		dev:  d,
		data: make([]byte, size),
	}, nil
}

func (d *device) free(size int) {
	d.mu.Lock()
	d.used -= int64(size)
	d.mu.Unlock()
}

func (d *device) Build(source, entry string) (driver.Kernel, error) {
	if d.isClosed() {
		return nil, driver.ErrReleased
	}
	return build(d, source, entry)
}

func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
