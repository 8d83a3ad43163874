package interop

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/plus3/computecs/compute"
	"github.com/plus3/computecs/compute/driver"
	"go.uber.org/zap"
)

// Surface receives presented pixels. *ebiten.Image satisfies it.
type Surface interface {
	WritePixels(pixels []byte)
}

// Texture2D is a width x height RGBA8 texture in device memory. Kernels see
// it as a scalar uint array of width*height packed pixels, red in the low
// byte.
type Texture2D struct {
	ctx     *compute.Context
	sharing driver.Sharing
	pixels  *compute.ArrayBuffer[uint32]
	width   int
	height  int

	mu       sync.Mutex
	acquired bool
}

// NewTexture2D allocates a shared texture. pixels holds optional initial
// RGBA8 content and must be width*height*4 bytes when given.
func NewTexture2D(ctx *compute.Context, width, height int, pixels []byte) (*Texture2D, error) {
	sharing, err := sharingFor(ctx)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", compute.ErrAllocation, width, height)
	}
	if pixels != nil && len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes of pixels for a %dx%d texture", compute.ErrTransfer, len(pixels), width, height)
	}

	buf, err := compute.NewArrayBuffer[uint32](ctx, width*height)
	if err != nil {
		return nil, err
	}
	if pixels != nil {
		packed := make([]uint32, width*height)
		for i := range packed {
			packed[i] = binary.LittleEndian.Uint32(pixels[i*4:])
		}
		if err := buf.SetAll(packed); err != nil {
			_ = buf.Release()
			return nil, err
		}
	}

	mem, _ := buf.Handle()
	share, err := ctx.Enqueue(func(driver.Device) error {
		return sharing.Share(mem)
	})
	if err == nil {
		_, err = share.Get()
	}
	if err != nil {
		_ = buf.Release()
		return nil, fmt.Errorf("sharing texture: %w", err)
	}

	ctx.Logger().Debug("shared texture created", zap.Int("width", width), zap.Int("height", height))
	return &Texture2D{
		ctx:     ctx,
		sharing: sharing,
		pixels:  buf,
		width:   width,
		height:  height,
	}, nil
}

func (t *Texture2D) Width() int  { return t.width }
func (t *Texture2D) Height() int { return t.height }

// Handle binds the texture as a kernel argument.
func (t *Texture2D) Handle() (driver.Memory, driver.Layout) {
	return t.pixels.Handle()
}

// Acquire hands the texture to compute. The acquire is ordered after every
// command already on the queue.
func (t *Texture2D) Acquire() (*Lease, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.acquired {
		return nil, ErrAlreadyAcquired
	}
	mem, _ := t.pixels.Handle()
	ev, err := t.ctx.Enqueue(func(driver.Device) error {
		return t.sharing.Acquire(mem)
	})
	if err != nil {
		return nil, err
	}
	t.acquired = true
	return &Lease{tex: t, acquired: ev}, nil
}

func (t *Texture2D) release() (*compute.Event, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.acquired {
		return nil, ErrNotAcquired
	}
	mem, _ := t.pixels.Handle()
	ev, err := t.ctx.Enqueue(func(driver.Device) error {
		return t.sharing.Release(mem)
	})
	if err != nil {
		return nil, err
	}
	t.acquired = false
	return ev, nil
}

// Pixels issues a read of the texture as RGBA8 bytes.
func (t *Texture2D) Pixels() (*compute.Future[[]byte], error) {
	f, err := t.pixels.FetchAll()
	if err != nil {
		return nil, err
	}
	return compute.Then(f, func(packed []uint32) ([]byte, error) {
		out := make([]byte, len(packed)*4)
		for i, p := range packed {
			binary.LittleEndian.PutUint32(out[i*4:], p)
		}
		return out, nil
	}), nil
}

// Present copies the texture to surface. The texture must not be held by
// a compute lease.
func (t *Texture2D) Present(surface Surface) error {
	t.mu.Lock()
	acquired := t.acquired
	t.mu.Unlock()
	if acquired {
		return fmt.Errorf("%w: texture is held by compute", ErrAlreadyAcquired)
	}

	f, err := t.Pixels()
	if err != nil {
		return err
	}
	pixels, err := f.Get()
	if err != nil {
		return err
	}
	surface.WritePixels(pixels)
	return nil
}

// Release frees the texture.
func (t *Texture2D) Release() error {
	return t.pixels.Release()
}

// Lease is compute ownership of a shared resource.
type Lease struct {
	tex      *Texture2D
	acquired *compute.Event

	once sync.Once
}

// Acquired resolves when the acquire command has run.
func (l *Lease) Acquired() *compute.Event {
	return l.acquired
}

// Release returns the resource to the graphics side. The release is
// ordered after every launch already issued. A lease releases once.
func (l *Lease) Release() (*compute.Event, error) {
	var (
		ev  *compute.Event
		err = ErrNotAcquired
	)
	l.once.Do(func() {
		ev, err = l.tex.release()
	})
	return ev, err
}
