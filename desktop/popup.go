package desktop

import (
	wlroots "github.com/tokyo4j/wlroots"
	"github.com/tokyo4j/wlroots/xdg"
)

// A popup shadows one xdg popup on behalf of a view, recursively
// wiring any popups the popup itself spawns. Destruction of the
// protocol object detaches every subscription.
type popup struct {
	view  *View
	popup *xdg.Popup

	listeners []*wlroots.Listener
}

func newPopup(view *View, p *xdg.Popup) *popup {
	c := &popup{view: view, popup: p}

	surface := p.Surface()
	c.listeners = append(c.listeners,
		surface.OnDestroy(c.handleDestroy),
		surface.OnMap(func(*xdg.Surface) { view.DamageWhole() }),
		surface.OnUnmap(func(*xdg.Surface) { view.DamageWhole() }),
		surface.OnNewPopup(func(child *xdg.Popup) { newPopup(view, child) }),
	)
	return c
}

func (c *popup) handleDestroy(*xdg.Surface) {
	for _, lis := range c.listeners {
		lis.Destroy()
	}
	c.listeners = nil
	c.view.DamageWhole()
}
