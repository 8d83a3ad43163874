package compute

import (
	"errors"
	"fmt"
)

var (
	ErrAllocation  = errors.New("compute: device allocation failed")
	ErrTransfer    = errors.New("compute: transfer failed")
	ErrIndex       = errors.New("compute: index out of range")
	ErrCompile     = errors.New("compute: kernel compilation failed")
	ErrEntryPoint  = errors.New("compute: kernel entry point not found")
	ErrLaunch      = errors.New("compute: kernel launch failed")
	ErrBackendInit = errors.New("compute: backend initialization failed")
	ErrClosed      = errors.New("compute: context closed")
	ErrNoDevice    = errors.New("compute: no such device")
	ErrLayout      = errors.New("compute: type has no device layout")
)

// CompileError is returned by NewKernel when the backend rejects the
// kernel source. Log holds the backend's diagnostic text.
type CompileError struct {
	Entry string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compute: compiling kernel %q failed:\n%s", e.Entry, e.Log)
}

func (e *CompileError) Unwrap() error {
	return ErrCompile
}
