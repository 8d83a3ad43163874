package compute

import (
	"errors"
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute/driver"
	"go.uber.org/zap"
)

// Kernel is a compiled entry point with host-side argument bindings.
// Arguments are applied to the device at launch time, so rebinding an
// argument never affects a launch already issued.
type Kernel struct {
	ctx   *Context
	entry string
	k     driver.Kernel

	mu   sync.Mutex
	args []Memory
}

// NewKernel compiles source and resolves entry.
func NewKernel(ctx *Context, source, entry string) (*Kernel, error) {
	build, err := enqueue(ctx.queue, func() (driver.Kernel, error) {
		return ctx.drv.Build(source, entry)
	})
	if err != nil {
		return nil, err
	}

	k, err := build.Get()
	if err != nil {
		var buildErr *driver.BuildError
		switch {
		case errors.As(err, &buildErr):
			ctx.log.Warn("kernel compilation failed", zap.String("entry", entry), zap.String("log", buildErr.Log))
			return nil, &CompileError{Entry: entry, Log: buildErr.Log}
		case errors.Is(err, driver.ErrEntryPoint):
			return nil, fmt.Errorf("%w: %q", ErrEntryPoint, entry)
		default:
			return nil, fmt.Errorf("%w: %q: %w", ErrCompile, entry, err)
		}
	}

	ctx.log.Debug("kernel compiled", zap.String("entry", entry))
	return &Kernel{ctx: ctx, entry: entry, k: k}, nil
}

// Entry returns the kernel's entry point name.
func (k *Kernel) Entry() string {
	return k.entry
}

// SetArg binds mem as argument index.
func (k *Kernel) SetArg(index int, mem Memory) error {
	if index < 0 {
		return fmt.Errorf("%w: %s: negative argument index %d", ErrLaunch, k.entry, index)
	}
	if mem == nil {
		return fmt.Errorf("%w: %s: nil argument %d", ErrLaunch, k.entry, index)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	for len(k.args) <= index {
		k.args = append(k.args, nil)
	}
	k.args[index] = mem
	return nil
}

// ResetArgs unbinds every argument. Launches already issued keep the
// arguments they were issued with.
func (k *Kernel) ResetArgs() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.args = k.args[:0]
}

// Run launches the kernel over a 1, 2 or 3 dimensional range of work
// items. The returned event resolves when the launch has finished.
func (k *Kernel) Run(sizes ...int) (*Event, error) {
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: %s: empty work size", ErrLaunch, k.entry)
	}

	k.mu.Lock()
	args := append([]Memory(nil), k.args...)
	k.mu.Unlock()
	global := append([]int(nil), sizes...)

	return enqueue(k.ctx.queue, func() (struct{}, error) {
		k.k.ResetArgs()
		for i, arg := range args {
			if arg == nil {
				return struct{}{}, fmt.Errorf("%w: %s: argument %d not bound", ErrLaunch, k.entry, i)
			}
			mem, layout := arg.Handle()
			if err := k.k.SetArg(i, mem, layout); err != nil {
				return struct{}{}, fmt.Errorf("%w: %s: argument %d: %w", ErrLaunch, k.entry, i, err)
			}
		}
		if err := k.k.Launch(global); err != nil {
			return struct{}{}, fmt.Errorf("%w: %s: %w", ErrLaunch, k.entry, err)
		}
		return struct{}{}, nil
	})
}

// Release frees the compiled kernel after pending launches complete.
func (k *Kernel) Release() error {
	ev, err := k.ctx.Enqueue(func(driver.Device) error {
		return k.k.Release()
	})
	if err != nil {
		return k.k.Release()
	}
	_, err = ev.Get()
	return err
}
