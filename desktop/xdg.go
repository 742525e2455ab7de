package desktop

import (
	"deedles.dev/ximage/geom"
	wlroots "github.com/tokyo4j/wlroots"
	"github.com/tokyo4j/wlroots/xdg"
)

// xdgSurface binds one xdg toplevel to a view: it translates protocol
// signals into view mutations and reconciles pending move/resize
// negotiations against client acknowledgments.
type xdgSurface struct {
	desktop  *Desktop
	view     *View
	toplevel *xdg.Toplevel

	listeners []*wlroots.Listener
}

func (d *Desktop) handleNewSurface(surface *xdg.Surface) {
	switch role := surface.Role().(type) {
	case *xdg.Popup:
		d.logger.Debug("new xdg popup")
	case *xdg.Toplevel:
		d.handleNewToplevel(role)
	}
}

func (d *Desktop) handleNewToplevel(toplevel *xdg.Toplevel) {
	d.logger.Debug("new xdg toplevel",
		"title", toplevel.Title(),
		"app_id", toplevel.AppID(),
	)
	toplevel.Surface().Ping()

	s := &xdgSurface{desktop: d, toplevel: toplevel}
	view := &View{desktop: d, surface: s}
	s.view = view

	surface := toplevel.Surface()
	s.listeners = append(s.listeners,
		surface.OnCommit(s.handleCommit),
		surface.OnDestroy(s.handleDestroy),
		surface.OnMap(s.handleMap),
		surface.OnUnmap(s.handleUnmap),
		surface.OnNewPopup(s.handleNewPopup),
		toplevel.OnRequestMove(s.handleRequestMove),
		toplevel.OnRequestResize(s.handleRequestResize),
		toplevel.OnRequestMaximize(s.handleRequestMaximize),
		toplevel.OnRequestFullscreen(s.handleRequestFullscreen),
	)

	d.views = append(d.views, view)

	if toplevel.ClientPendingMaximized() {
		view.Maximize(true)
	}
	if fullscreen, out := toplevel.ClientPendingFullscreen(); fullscreen {
		view.SetFullscreen(true, out)
	}
}

// effectiveSize is the window-geometry size if the client set one, and
// the raw buffer size otherwise.
func (s *xdgSurface) effectiveSize() (w, h int) {
	cur := s.toplevel.Surface().Current()
	if g := cur.Geometry; g.Dx() > 0 && g.Dy() > 0 {
		return g.Dx(), g.Dy()
	}
	if cur.Buffer != nil {
		return cur.Buffer.Width(), cur.Buffer.Height()
	}
	return 0, 0
}

func (s *xdgSurface) handleMap(surface *xdg.Surface) {
	v := s.view
	v.width, v.height = s.effectiveSize()
	v.mapView(surface.Current().Buffer)
	s.desktop.Activate(v)
}

func (s *xdgSurface) handleUnmap(*xdg.Surface) {
	s.view.DamageWhole()
	s.view.unmapView()
}

func (s *xdgSurface) handleDestroy(*xdg.Surface) {
	for _, lis := range s.listeners {
		lis.Destroy()
	}
	s.listeners = nil
	s.view.finish()
}

// handleCommit runs the reconciliation algorithm on every client
// commit while mapped: propagate the committed size, then resolve any
// outstanding move/resize against the acknowledged configure serial.
func (s *xdgSurface) handleCommit(surface *xdg.Surface) {
	if !surface.Mapped() {
		return
	}
	v := s.view

	if v.buffer != nil {
		v.buffer.SetBuffer(surface.Current().Buffer)
	}

	width, height := s.effectiveSize()
	v.updateSize(width, height)

	pending := v.pendingMoveResizeConfigureSerial
	if pending != 0 && surface.AckedConfigureSerial() >= pending {
		x, y := v.x, v.y
		if v.pendingMoveResize.UpdateX {
			x = v.pendingMoveResize.X +
				float64(v.pendingMoveResize.Width-width)
		}
		if v.pendingMoveResize.UpdateY {
			y = v.pendingMoveResize.Y +
				float64(v.pendingMoveResize.Height-height)
		}
		v.Move(x, y)

		// An acknowledgment for a later serial may still be
		// awaiting the one it expects; only an exact match
		// settles the negotiation.
		if surface.AckedConfigureSerial() == pending {
			v.pendingMoveResizeConfigureSerial = 0
		}
	}
}

func (s *xdgSurface) handleNewPopup(p *xdg.Popup) {
	newPopup(s.view, p)
}

func (s *xdgSurface) handleRequestMove(e xdg.MoveRequest) {
	seat := s.desktop.seatFor(e.Seat)
	if seat == nil {
		return
	}
	seat.BeginMove(s.view)
}

func (s *xdgSurface) handleRequestResize(e xdg.ResizeRequest) {
	seat := s.desktop.seatFor(e.Seat)
	if seat == nil {
		return
	}
	seat.BeginResize(s.view, e.Edges)
}

func (s *xdgSurface) handleRequestMaximize(*xdg.Toplevel) {
	s.view.Maximize(s.toplevel.ClientPendingMaximized())
}

func (s *xdgSurface) handleRequestFullscreen(e xdg.FullscreenRequest) {
	s.view.SetFullscreen(e.Fullscreen, e.Output)
}

func (s *xdgSurface) Activate(active bool) {
	s.toplevel.SetActivated(active)
}

func (s *xdgSurface) Constraints() (min, max geom.Point[int]) {
	minW, minH := s.toplevel.MinSize()
	maxW, maxH := s.toplevel.MaxSize()
	return geom.Pt(minW, minH), geom.Pt(maxW, maxH)
}

func (s *xdgSurface) Configure(width, height int) uint32 {
	return s.toplevel.SetSize(width, height)
}

func (s *xdgSurface) SetMaximized(maximized bool) {
	s.toplevel.SetMaximized(maximized)
}

func (s *xdgSurface) SetFullscreen(fullscreen bool) {
	s.toplevel.SetFullscreen(fullscreen)
}

func (s *xdgSurface) Close() {
	for _, p := range s.toplevel.Surface().Popups() {
		p.SendClose()
	}
	s.toplevel.SendClose()
}

func (s *xdgSurface) Destroy() {
	s.toplevel.Surface().Destroy()
}
