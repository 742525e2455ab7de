package xdg

import (
	"fmt"
	"slices"

	wlroots "github.com/tokyo4j/wlroots"
)

// ToplevelState is the server-negotiated state of a toplevel. It
// becomes current only once the client acknowledges the configure
// carrying it and commits.
type ToplevelState struct {
	Width, Height int

	Activated  bool
	Maximized  bool
	Fullscreen bool
	Resizing   bool
}

// A Configure is a server-to-client state proposal tagged with an
// increasing serial. The client acknowledges it by serial.
type Configure struct {
	Serial uint32
	State  ToplevelState
}

// MoveRequest asks the compositor to begin an interactive move.
type MoveRequest struct {
	Seat Seat
}

// ResizeRequest asks the compositor to begin an interactive resize
// from the given edges.
type ResizeRequest struct {
	Seat  Seat
	Edges Edges
}

// FullscreenRequest asks the compositor to (un)fullscreen the window,
// optionally on a particular output.
type FullscreenRequest struct {
	Fullscreen bool
	Output     *wlroots.Output
}

// A Toplevel is the toplevel-window role of a surface.
type Toplevel struct {
	surface *Surface

	title string
	appID string

	// server is the state the next configure will carry; current is
	// the last acked-and-committed state.
	server  ToplevelState
	current ToplevelState

	scheduled []Configure
	acked     *Configure

	minW, minH, maxW, maxH            int
	pendingMinW, pendingMinH          int
	pendingMaxW, pendingMaxH          int
	clientMaximized, clientFullscreen bool
	clientFullscreenOutput            *wlroots.Output

	configureSig         wlroots.Signal[Configure]
	requestMoveSig       wlroots.Signal[MoveRequest]
	requestResizeSig     wlroots.Signal[ResizeRequest]
	requestMaximizeSig   wlroots.Signal[*Toplevel]
	requestFullscreenSig wlroots.Signal[FullscreenRequest]
}

func (*Toplevel) role() {}

func (t *Toplevel) Surface() *Surface { return t.surface }

func (t *Toplevel) Title() string { return t.title }
func (t *Toplevel) AppID() string { return t.appID }

// Current is the toplevel state the client has acknowledged and
// committed.
func (t *Toplevel) Current() ToplevelState { return t.current }

// MinSize and MaxSize are the committed size constraints. Zero means
// unconstrained on that axis.
func (t *Toplevel) MinSize() (w, h int) { return t.minW, t.minH }
func (t *Toplevel) MaxSize() (w, h int) { return t.maxW, t.maxH }

// ClientPendingMaximized is the client's latest maximize wish, honored
// only when the compositor forwards it back as a configure.
func (t *Toplevel) ClientPendingMaximized() bool { return t.clientMaximized }

// ClientPendingFullscreen is the client's latest fullscreen wish and
// output hint.
func (t *Toplevel) ClientPendingFullscreen() (bool, *wlroots.Output) {
	return t.clientFullscreen, t.clientFullscreenOutput
}

// scheduleConfigure snapshots the server state into a new configure
// and sends it. Serials are strictly monotonically increasing per
// surface; zero is never used.
func (t *Toplevel) scheduleConfigure() uint32 {
	t.surface.lastSerial++
	c := Configure{Serial: t.surface.lastSerial, State: t.server}
	t.scheduled = append(t.scheduled, c)
	t.configureSig.Emit(c)
	return c.Serial
}

// SetSize proposes a new size to the client and returns the configure
// serial carrying it.
func (t *Toplevel) SetSize(width, height int) uint32 {
	t.server.Width = width
	t.server.Height = height
	return t.scheduleConfigure()
}

func (t *Toplevel) SetActivated(activated bool) {
	t.server.Activated = activated
	t.scheduleConfigure()
}

func (t *Toplevel) SetMaximized(maximized bool) {
	t.server.Maximized = maximized
	t.scheduleConfigure()
}

func (t *Toplevel) SetFullscreen(fullscreen bool) {
	t.server.Fullscreen = fullscreen
	t.scheduleConfigure()
}

func (t *Toplevel) SetResizing(resizing bool) {
	t.server.Resizing = resizing
	t.scheduleConfigure()
}

// SendClose asks the client to close the window.
func (t *Toplevel) SendClose() {
	t.surface.SendClose()
}

func (t *Toplevel) ackConfigure(serial uint32) error {
	i := slices.IndexFunc(t.scheduled, func(c Configure) bool {
		return c.Serial == serial
	})
	if i < 0 {
		return fmt.Errorf("ack configure: unknown serial %d", serial)
	}
	// Earlier configures are superseded by the acked one.
	c := t.scheduled[i]
	t.acked = &c
	t.scheduled = slices.Clone(t.scheduled[i+1:])
	t.surface.ackedSerial = serial
	return nil
}

// applyCommit folds acked server state and pending client state into
// the committed state. Runs on every surface commit.
func (t *Toplevel) applyCommit() {
	if t.acked != nil {
		t.current = t.acked.State
		t.acked = nil
	}
	t.minW, t.minH = t.pendingMinW, t.pendingMinH
	t.maxW, t.maxH = t.pendingMaxW, t.pendingMaxH
}

// OnConfigure registers the client-side callback for configures.
func (t *Toplevel) OnConfigure(cb func(Configure)) *wlroots.Listener {
	return t.configureSig.Add(cb)
}

func (t *Toplevel) OnRequestMove(cb func(MoveRequest)) *wlroots.Listener {
	return t.requestMoveSig.Add(cb)
}

func (t *Toplevel) OnRequestResize(cb func(ResizeRequest)) *wlroots.Listener {
	return t.requestResizeSig.Add(cb)
}

func (t *Toplevel) OnRequestMaximize(cb func(*Toplevel)) *wlroots.Listener {
	return t.requestMaximizeSig.Add(cb)
}

func (t *Toplevel) OnRequestFullscreen(cb func(FullscreenRequest)) *wlroots.Listener {
	return t.requestFullscreenSig.Add(cb)
}

// The methods below drive the object on the client's behalf.

func (t *Toplevel) SetTitle(title string) { t.title = title }
func (t *Toplevel) SetAppID(id string)    { t.appID = id }

// SetMinSize sets the client's minimum size constraint, applied on the
// next commit.
func (t *Toplevel) SetMinSize(width, height int) {
	t.pendingMinW, t.pendingMinH = width, height
}

// SetMaxSize sets the client's maximum size constraint, applied on the
// next commit.
func (t *Toplevel) SetMaxSize(width, height int) {
	t.pendingMaxW, t.pendingMaxH = width, height
}

func (t *Toplevel) RequestMove(seat Seat) {
	t.requestMoveSig.Emit(MoveRequest{Seat: seat})
}

func (t *Toplevel) RequestResize(seat Seat, edges Edges) {
	t.requestResizeSig.Emit(ResizeRequest{Seat: seat, Edges: edges})
}

func (t *Toplevel) RequestMaximize(maximized bool) {
	t.clientMaximized = maximized
	t.requestMaximizeSig.Emit(t)
}

func (t *Toplevel) RequestFullscreen(fullscreen bool, output *wlroots.Output) {
	t.clientFullscreen = fullscreen
	t.clientFullscreenOutput = output
	t.requestFullscreenSig.Emit(FullscreenRequest{
		Fullscreen: fullscreen,
		Output:     output,
	})
}
