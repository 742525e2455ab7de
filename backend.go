package wlroots

import (
	"image"

	"deedles.dev/ximage/geom"
)

// An OutputMode is one fixed resolution and refresh rate supported by
// an output device. Refresh is in mHz.
type OutputMode struct {
	Width, Height int
	Refresh       int
}

// A Frame is one composited picture ready for submission to an output
// device, along with the regions that changed since the previous frame.
type Frame struct {
	Image  *image.RGBA
	Damage []geom.Rect[int]
}

// An OutputDevice is the hardware-facing side of an output. The
// compositing core only asks it to accept composited frames; retry and
// backoff on failed commits are the device's own concern.
type OutputDevice interface {
	Name() string

	Modes() []OutputMode
	PreferredMode() (OutputMode, bool)
	Mode() OutputMode
	SetMode(OutputMode)

	Scale() float64
	SetScale(float64)

	Commit(*Frame) error
}

// A Backend produces output devices. Implementations announce each new
// output wrapped in an Output and pace its frame signals.
type Backend interface {
	Start() error
	Destroy()
	OnNewOutput(func(*Output)) *Listener
}
