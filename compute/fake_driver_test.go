package compute_test

import (
	"errors"
	"sync/atomic"

	"github.com/plus3/computecs/compute/driver"
)

var errInjected = errors.New("injected fault")

// faultyDriver wraps plain byte memory and fails operations on demand.
type faultyDriver struct {
	failOpen   bool
	failWrites atomic.Bool
	failReads  atomic.Bool
}

func (d *faultyDriver) Name() string { return "faulty" }

func (d *faultyDriver) Devices() ([]driver.DeviceInfo, error) {
	return []driver.DeviceInfo{{Name: "Faulty Device", MaxWorkDims: 1}}, nil
}

func (d *faultyDriver) Open(index int) (driver.Device, error) {
	if d.failOpen {
		return nil, errInjected
	}
	return &faultyDevice{drv: d}, nil
}

func (d *faultyDriver) Extension(string) (any, bool) { return nil, false }

type faultyDevice struct {
	drv *faultyDriver
}

func (d *faultyDevice) Info() driver.DeviceInfo { return driver.DeviceInfo{Name: "Faulty Device"} }

func (d *faultyDevice) Alloc(size int) (driver.Memory, error) {
	return &faultyMemory{drv: d.drv, data: make([]byte, size)}, nil
}

func (d *faultyDevice) Build(source, entry string) (driver.Kernel, error) {
	return nil, &driver.BuildError{Log: "faulty device cannot build " + entry}
}

func (d *faultyDevice) Close() error { return nil }

type faultyMemory struct {
	drv  *faultyDriver
	data []byte
}

func (m *faultyMemory) Size() int { return len(m.data) }

func (m *faultyMemory) Read(dst []byte, offset int) error {
	if m.drv.failReads.Load() {
		return errInjected
	}
	copy(dst, m.data[offset:])
	return nil
}

func (m *faultyMemory) Write(src []byte, offset int) error {
	if m.drv.failWrites.Load() {
		return errInjected
	}
	copy(m.data[offset:], src)
	return nil
}

func (m *faultyMemory) Release() error { return nil }
