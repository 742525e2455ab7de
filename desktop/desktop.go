// Package desktop binds shell surfaces to views and scene content, and
// drives per-output frame commits.
package desktop

import (
	"iter"
	"log/slog"
	"slices"

	"deedles.dev/xiter"
	wlroots "github.com/tokyo4j/wlroots"
	"github.com/tokyo4j/wlroots/internal/util"
	"github.com/tokyo4j/wlroots/xdg"
)

// A Seat can begin interactive grabs on views. Both calls are fire and
// forget; the seat owns the grab lifecycle.
type Seat interface {
	xdg.Seat
	BeginMove(*View)
	BeginResize(*View, xdg.Edges)
}

type Config struct {
	Logger  *slog.Logger   `yaml:"-"`
	Outputs []OutputConfig `yaml:"outputs"`
}

// A Desktop owns the scene graph, the views, and the wiring between
// the backend's outputs and the shell's surfaces.
type Desktop struct {
	logger *slog.Logger
	cfg    Config

	scene   *wlroots.Scene
	shell   *xdg.Shell
	backend wlroots.Backend

	outputs []*Output
	views   []*View
	seats   []Seat

	newOutput  *wlroots.Listener
	newSurface *wlroots.Listener
}

func New(backend wlroots.Backend, shell *xdg.Shell, cfg Config) *Desktop {
	d := &Desktop{
		logger:  cfg.Logger,
		cfg:     cfg,
		scene:   wlroots.NewScene(),
		shell:   shell,
		backend: backend,
	}
	if d.logger == nil {
		d.logger = nopLogger()
	}

	d.newOutput = backend.OnNewOutput(d.handleNewOutput)
	d.newSurface = shell.OnNewSurface(d.handleNewSurface)
	return d
}

func (d *Desktop) Scene() *wlroots.Scene { return d.scene }

// AddSeat registers a seat for interactive move and resize requests.
func (d *Desktop) AddSeat(seat Seat) {
	d.seats = append(d.seats, seat)
}

// seatFor finds the registered seat matching a protocol-level seat
// reference, if any.
func (d *Desktop) seatFor(ref xdg.Seat) Seat {
	if ref == nil {
		return nil
	}
	seat, _ := util.FindFunc(d.seats, func(s Seat) bool {
		return s.Name() == ref.Name()
	})
	return seat
}

// Views yields all views, in stacking order from back to front.
func (d *Desktop) Views() iter.Seq[*View] {
	return slices.Values(slices.Clone(d.views))
}

// MappedViews yields only the views currently mapped on screen.
func (d *Desktop) MappedViews() iter.Seq[*View] {
	return xiter.Filter(d.Views(), func(v *View) bool { return v.mapped })
}

func (d *Desktop) Outputs() []*Output {
	return slices.Clone(d.outputs)
}

// Activate focuses v: the previously activated view is deactivated
// first and v is raised to the top of the stack.
func (d *Desktop) Activate(v *View) {
	for _, other := range d.views {
		if other != v && other.activated {
			other.Activate(false)
		}
	}
	if v == nil {
		return
	}
	v.Activate(true)
	if i := slices.Index(d.views, v); i >= 0 {
		d.views = slices.Delete(d.views, i, i+1)
		d.views = append(d.views, v)
	}
}

func (d *Desktop) removeView(v *View) {
	if i := slices.Index(d.views, v); i >= 0 {
		d.views = slices.Delete(d.views, i, i+1)
	}
}

// Destroy detaches the desktop from the backend and the shell and
// releases every view.
func (d *Desktop) Destroy() {
	d.newOutput.Destroy()
	d.newSurface.Destroy()
	for _, v := range slices.Clone(d.views) {
		v.Destroy()
	}
	for _, o := range slices.Clone(d.outputs) {
		o.finish()
	}
}
