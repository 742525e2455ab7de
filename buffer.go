package wlroots

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/tokyo4j/wlroots/internal/drm"
	"github.com/tokyo4j/wlroots/internal/fimg"
)

// AccessFlags describe a data access request on a buffer.
type AccessFlags uint32

const (
	AccessRead AccessFlags = 1 << iota
	AccessWrite
)

var (
	// ErrWriteDenied is returned by buffer kinds whose contents are
	// read-only to consumers.
	ErrWriteDenied = errors.New("buffer denies write access")

	ErrBufferDestroyed = errors.New("buffer already destroyed")

	ErrBadSize = errors.New("width and height must be positive")
)

// A BufferImpl provides the backing-specific behavior of a Buffer.
type BufferImpl interface {
	// BeginDataAccess exposes the backing storage. Implementations
	// may refuse the request, typically for AccessWrite.
	BeginDataAccess(flags AccessFlags) (data []byte, format uint32, stride int, err error)
	EndDataAccess()

	// Destroy releases the backing storage. It is called exactly
	// once, when the last reference to the buffer is gone.
	Destroy()
}

// A Buffer is a reference-counted pixel container. Its dimensions and
// format are fixed at creation; consumers reference it with Lock and
// release it with Unlock, and the creator gives up its own reference
// with Drop. The backing storage is destroyed when the creator has
// dropped the buffer and no consumer references remain.
type Buffer struct {
	impl          BufferImpl
	width, height int

	locks     int
	dropped   bool
	destroyed bool
	accessing int
}

// InitBuffer prepares the common part of a buffer. Backings embed a
// Buffer and call this from their constructor.
func InitBuffer(b *Buffer, impl BufferImpl, width, height int) {
	*b = Buffer{
		impl:   impl,
		width:  width,
		height: height,
	}
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Lock takes a consumer reference. It returns b for convenience.
func (b *Buffer) Lock() *Buffer {
	if b.destroyed {
		panic("lock of destroyed buffer")
	}
	b.locks++
	return b
}

// Unlock releases a consumer reference taken with Lock.
func (b *Buffer) Unlock() {
	if b.locks <= 0 {
		panic("unlock of unlocked buffer")
	}
	b.locks--
	b.maybeDestroy()
}

// Drop releases the creator's reference. The buffer stays alive while
// consumers still hold locks.
func (b *Buffer) Drop() {
	if b.dropped {
		panic("buffer dropped twice")
	}
	b.dropped = true
	b.maybeDestroy()
}

func (b *Buffer) maybeDestroy() {
	if !b.dropped || b.locks > 0 || b.destroyed {
		return
	}
	b.destroyed = true
	b.impl.Destroy()
}

// BeginDataAccess exposes the buffer's storage for the duration of the
// access. Each successful call must be paired with EndDataAccess.
func (b *Buffer) BeginDataAccess(flags AccessFlags) (data []byte, format uint32, stride int, err error) {
	if b.destroyed {
		return nil, 0, 0, ErrBufferDestroyed
	}
	data, format, stride, err = b.impl.BeginDataAccess(flags)
	if err != nil {
		return nil, 0, 0, err
	}
	b.accessing++
	return data, format, stride, nil
}

func (b *Buffer) EndDataAccess() {
	if b.accessing <= 0 {
		panic("end of access that was never begun")
	}
	b.accessing--
	b.impl.EndDataAccess()
}

// A RasterBuffer is a Buffer backed by a software ARGB8888 raster
// surface. The creator paints it through Image before publishing it;
// once shared, consumers only get read access.
type RasterBuffer struct {
	Buffer
	img *fimg.PARGB
}

// NewRasterBuffer allocates a width-by-height raster buffer. No buffer
// is produced on failure.
func NewRasterBuffer(width, height int) (*RasterBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("create %dx%d raster buffer: %w", width, height, ErrBadSize)
	}

	b := RasterBuffer{
		img: fimg.NewPARGB(image.Rect(0, 0, width, height)),
	}
	InitBuffer(&b.Buffer, &b, width, height)
	return &b, nil
}

// Image is the drawable backing surface. It is only for the creator,
// before the buffer is first shared into a scene graph.
func (b *RasterBuffer) Image() draw.Image {
	return b.img
}

func (b *RasterBuffer) BeginDataAccess(flags AccessFlags) (data []byte, format uint32, stride int, err error) {
	if flags&AccessWrite != 0 {
		return nil, 0, 0, ErrWriteDenied
	}
	return b.img.Pix, drm.FormatARGB8888, b.img.Stride, nil
}

func (b *RasterBuffer) EndDataAccess() {}

func (b *RasterBuffer) Destroy() {
	b.img = nil
}
