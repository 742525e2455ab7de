package wlroots

import "math"

// An Output is one physical output as seen by the compositing core: a
// device plus the frame pacing signal that drives committing to it.
type Output struct {
	dev OutputDevice

	frame   Signal[*Output]
	destroy Signal[*Output]
}

// NewOutput wraps an output device. Backends call this when a device
// appears and then deliver its vsync events through SendFrame.
func NewOutput(dev OutputDevice) *Output {
	return &Output{dev: dev}
}

func (o *Output) Device() OutputDevice { return o.dev }

func (o *Output) Name() string { return o.dev.Name() }

func (o *Output) Scale() float64 {
	if s := o.dev.Scale(); s > 0 {
		return s
	}
	return 1
}

// EffectiveResolution is the output's size in scene coordinates, i.e.
// the mode resolution divided by the scale factor.
func (o *Output) EffectiveResolution() (w, h int) {
	mode := o.dev.Mode()
	scale := o.Scale()
	return int(math.Round(float64(mode.Width) / scale)),
		int(math.Round(float64(mode.Height) / scale))
}

// OnFrame registers a callback for the output's frame signal. One
// signal arrives per vsync, independently per output.
func (o *Output) OnFrame(cb func(*Output)) *Listener {
	return o.frame.Add(cb)
}

func (o *Output) OnDestroy(cb func(*Output)) *Listener {
	return o.destroy.Add(cb)
}

// SendFrame delivers one frame signal. Called by the backend.
func (o *Output) SendFrame() {
	o.frame.Emit(o)
}

// Destroy announces the output's disappearance to its listeners.
func (o *Output) Destroy() {
	o.destroy.Emit(o)
}
