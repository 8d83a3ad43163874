// Package driver defines the boundary between the compute package and an
// accelerator runtime. A driver enumerates devices, opens them, allocates
// device memory and builds kernels from source text.
//
// Drivers are not required to be safe for concurrent use: the compute
// package serializes every call against an opened Device through that
// device's single command queue.
package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is returned by Device.Alloc when the allocation cannot be satisfied.
	ErrOutOfMemory = errors.New("out of device memory")
	// ErrOutOfRange is returned by Memory reads and writes that exceed the allocation.
	ErrOutOfRange = errors.New("memory range out of bounds")
	// ErrReleased is returned when using a released memory object or kernel.
	ErrReleased = errors.New("object released")
	// ErrEntryPoint is returned by Device.Build when the entry point is absent.
	ErrEntryPoint = errors.New("entry point not found")
	// ErrInvalidArgs is returned by Kernel.Launch when bound arguments are missing or invalid.
	ErrInvalidArgs = errors.New("invalid kernel arguments")
	// ErrNoSuchDevice is returned by Driver.Open for an unknown device index.
	ErrNoSuchDevice = errors.New("no such device")
)

// BuildError carries the backend diagnostic of a failed program build.
type BuildError struct {
	Log string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("program build failed:\n%s", e.Log)
}

// DeviceInfo describes an enumerable device.
type DeviceInfo struct {
	Name          string
	Vendor        string
	Version       string
	GlobalMemSize int64
	MaxWorkDims   int
}

// Driver is an accelerator runtime.
type Driver interface {
	Name() string
	Devices() ([]DeviceInfo, error)
	Open(index int) (Device, error)
	// Extension returns an optional driver extension by name.
	Extension(name string) (any, bool)
}

// Device is an opened device: the runtime context against which memory and
// kernels are created.
type Device interface {
	Info() DeviceInfo
	Alloc(size int) (Memory, error)
	Build(source, entry string) (Kernel, error)
	Close() error
}

// Memory is a contiguous device allocation addressed in bytes.
type Memory interface {
	Size() int
	Read(dst []byte, offset int) error
	Write(src []byte, offset int) error
	Release() error
}

// Kernel is an executable entry point of a built program.
type Kernel interface {
	Entry() string
	SetArg(index int, mem Memory, layout Layout) error
	// ResetArgs unbinds every argument.
	ResetArgs()
	Launch(global []int) error
	Release() error
}
