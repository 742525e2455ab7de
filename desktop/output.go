package desktop

import (
	"slices"

	wlroots "github.com/tokyo4j/wlroots"
)

// An Output is one backend output wired into the desktop: a scene
// binding plus the frame-driven commit loop.
type Output struct {
	desktop *Desktop
	out     *wlroots.Output
	scene   *wlroots.SceneOutput

	frame   *wlroots.Listener
	destroy *wlroots.Listener
}

func (o *Output) Output() *wlroots.Output           { return o.out }
func (o *Output) SceneOutput() *wlroots.SceneOutput { return o.scene }

func (d *Desktop) handleNewOutput(out *wlroots.Output) {
	o := &Output{
		desktop: d,
		out:     out,
		scene:   d.scene.NewOutput(out),
	}
	o.frame = out.OnFrame(func(out *wlroots.Output) {
		// Commit failure is the device's problem to retry; here it
		// is only reported.
		if err := o.scene.Commit(); err != nil {
			d.logger.Error("output commit",
				"output", out.Name(),
				"error", err,
			)
		}
	})
	o.destroy = out.OnDestroy(func(*wlroots.Output) {
		o.finish()
	})

	d.addOutput(o)
}

func (d *Desktop) addOutput(o *Output) {
	d.outputs = append(d.outputs, o)

	for _, config := range d.cfg.Outputs {
		if config.Name != o.out.Name() {
			continue
		}
		d.configureOutput(o, &config)
		return
	}

	d.layoutOutput(o, nil)
	d.setOutputMode(o, nil)
}

func (d *Desktop) configureOutput(o *Output, config *OutputConfig) {
	d.layoutOutput(o, config)
	d.setOutputMode(o, config)

	if config.Scale != 0 {
		o.out.Device().SetScale(config.Scale)
	}
}

func (d *Desktop) layoutOutput(o *Output, config *OutputConfig) {
	if (config == nil) || (config.X == -1) || (config.Y == -1) {
		// Auto placement: append to the right of existing outputs.
		var x int
		for _, other := range d.outputs {
			if other == o {
				continue
			}
			w, _ := other.out.EffectiveResolution()
			ox, _ := other.scene.Position()
			if ox+w > x {
				x = ox + w
			}
		}
		o.scene.SetPosition(x, 0)
		return
	}

	o.scene.SetPosition(config.X, config.Y)
}

func (d *Desktop) setOutputMode(o *Output, config *OutputConfig) {
	dev := o.out.Device()

	var set bool
	defer func() {
		if !set {
			if mode, ok := dev.PreferredMode(); ok {
				dev.SetMode(mode)
			}
		}
	}()

	modes := dev.Modes()
	if (config == nil) || (config.Width == 0) || (config.Height == 0) || (len(modes) == 0) {
		return
	}

	for _, mode := range modes {
		if (mode.Width == config.Width) && (mode.Height == config.Height) {
			dev.SetMode(mode)
			set = true
			return
		}
	}
}

func (o *Output) finish() {
	o.frame.Destroy()
	o.destroy.Destroy()
	o.scene.Destroy()

	d := o.desktop
	if i := slices.Index(d.outputs, o); i >= 0 {
		d.outputs = slices.Delete(d.outputs, i, i+1)
	}
}
