package xdg

import "deedles.dev/ximage/geom"

// A Popup is the transient-child role of a surface. It is anchored to
// a parent surface, which may itself be a popup: popup trees nest to
// unbounded depth.
type Popup struct {
	surface *Surface
	parent  *Surface

	pos geom.Point[int]
}

func (*Popup) role() {}

func (p *Popup) Surface() *Surface { return p.surface }

// Parent is the surface the popup is anchored to, or nil once either
// side of the relationship has been destroyed.
func (p *Popup) Parent() *Surface { return p.parent }

// Position is the popup's offset relative to its parent's window
// geometry.
func (p *Popup) Position() (x, y int) { return p.pos.X, p.pos.Y }

func (p *Popup) SetPosition(x, y int) {
	p.pos = geom.Pt(x, y)
}

// SendClose asks the client to dismiss the popup.
func (p *Popup) SendClose() {
	p.surface.SendClose()
}
