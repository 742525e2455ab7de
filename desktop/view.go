package desktop

import (
	"math"

	"deedles.dev/ximage/geom"
	wlroots "github.com/tokyo4j/wlroots"
)

// A ViewSurface is the protocol-specific half of a view. Each concrete
// role implements it; verbs a role does not support are no-ops rather
// than errors, matching client protocol tolerance.
type ViewSurface interface {
	Activate(active bool)

	// Constraints are the committed min and max size. A zero max
	// means unconstrained on that axis.
	Constraints() (min, max geom.Point[int])

	// Configure proposes a size to the client and returns the
	// configure serial, or zero if the protocol applies geometry
	// synchronously and needs no acknowledgment.
	Configure(width, height int) uint32

	SetMaximized(maximized bool)
	SetFullscreen(fullscreen bool)
	Close()
	Destroy()
}

// PendingMoveResize records the target of an in-flight move/resize
// negotiation. UpdateX and UpdateY mark the axes whose position must
// be re-anchored against the size the client actually commits.
type PendingMoveResize struct {
	UpdateX, UpdateY bool
	X, Y             float64
	Width, Height    int
}

// A View is one window, whatever its concrete protocol role.
type View struct {
	desktop *Desktop
	surface ViewSurface

	x, y          float64
	width, height int
	activated     bool
	mapped        bool

	pendingMoveResize                PendingMoveResize
	pendingMoveResizeConfigureSerial uint32

	fullscreenOutput *wlroots.Output

	tree   *wlroots.SceneTree
	buffer *wlroots.SceneBuffer
}

func (v *View) Position() (x, y float64) { return v.x, v.y }
func (v *View) Size() (w, h int)         { return v.width, v.height }
func (v *View) Mapped() bool             { return v.mapped }
func (v *View) Activated() bool          { return v.activated }

func (v *View) Activate(active bool) {
	v.activated = active
	v.surface.Activate(active)
}

// Resize proposes a new size, clamped to the surface's committed
// constraints. The position is left alone.
func (v *View) Resize(width, height int) {
	w, h := v.constrain(width, height)
	v.surface.Configure(w, h)
}

// MoveResize proposes a new geometry. Axes whose position changes are
// re-anchored so the opposite edge stays put even if the clamped or
// client-chosen size differs from the request. If the protocol needs
// no acknowledgment and no negotiation is outstanding the position
// applies immediately; otherwise it is held until the client commits
// with an acknowledging serial.
func (v *View) MoveResize(x, y float64, width, height int) {
	updateX := x != v.x
	updateY := y != v.y

	w, h := v.constrain(width, height)
	if updateX {
		x += float64(width - w)
	}
	if updateY {
		y += float64(height - h)
	}

	v.pendingMoveResize = PendingMoveResize{
		UpdateX: updateX,
		UpdateY: updateY,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
	}

	serial := v.surface.Configure(w, h)
	if serial > 0 {
		v.pendingMoveResizeConfigureSerial = serial
	} else if v.pendingMoveResizeConfigureSerial == 0 {
		v.Move(x, y)
	}
}

// Maximize forwards the compositor's maximize decision to the client.
// Nothing is assumed honored until the client's next commit.
func (v *View) Maximize(maximized bool) {
	v.surface.SetMaximized(maximized)
}

// SetFullscreen forwards the compositor's fullscreen decision. The
// output hint records where the client wants the window shown.
func (v *View) SetFullscreen(fullscreen bool, output *wlroots.Output) {
	v.fullscreenOutput = nil
	if fullscreen {
		v.fullscreenOutput = output
	}
	v.surface.SetFullscreen(fullscreen)
}

// FullscreenOutput is the output hint from the most recent fullscreen
// request, if any.
func (v *View) FullscreenOutput() *wlroots.Output { return v.fullscreenOutput }

func (v *View) Close() {
	v.surface.Close()
}

// Destroy tears down the underlying protocol surface, which cascades
// through the whole popup subtree and releases the view.
func (v *View) Destroy() {
	v.surface.Destroy()
}

// Move applies a position directly, bypassing negotiation.
func (v *View) Move(x, y float64) {
	v.x, v.y = x, y
	if v.tree != nil {
		v.tree.SetPosition(int(math.Round(x)), int(math.Round(y)))
	}
}

// DamageWhole marks the view's entire region as needing redraw.
func (v *View) DamageWhole() {
	v.desktop.scene.DamageRegion(v.bounds())
}

func (v *View) bounds() geom.Rect[int] {
	x, y := int(math.Round(v.x)), int(math.Round(v.y))
	return geom.Rt(x, y, x+v.width, y+v.height)
}

func (v *View) constrain(width, height int) (w, h int) {
	min, max := v.surface.Constraints()
	w, h = width, height
	if w < min.X {
		w = min.X
	} else if max.X > 0 && w > max.X {
		w = max.X
	}
	if h < min.Y {
		h = min.Y
	} else if max.Y > 0 && h > max.Y {
		h = max.Y
	}
	return w, h
}

// updateSize records the size the client committed and damages the
// affected region.
func (v *View) updateSize(width, height int) {
	if v.width == width && v.height == height {
		return
	}
	v.DamageWhole()
	v.width, v.height = width, height
	v.DamageWhole()
}

// mapView attaches the view's committed buffer to the scene graph.
func (v *View) mapView(buf *wlroots.Buffer) {
	v.mapped = true
	v.tree = v.desktop.scene.Tree.NewTree()
	v.tree.SetPosition(int(math.Round(v.x)), int(math.Round(v.y)))
	v.buffer = v.tree.NewBuffer(buf)
}

func (v *View) unmapView() {
	v.mapped = false
	if v.tree != nil {
		v.tree.Destroy()
		v.tree, v.buffer = nil, nil
	}
}

// finish releases the view after its protocol surface is gone. Any
// in-flight negotiation is discarded so no stale serial can resolve
// after destruction.
func (v *View) finish() {
	v.pendingMoveResize = PendingMoveResize{}
	v.pendingMoveResizeConfigureSerial = 0
	v.unmapView()
	v.desktop.removeView(v)
}
