// Package xdg models the client-facing shell surface objects: role
// negotiation, serial-numbered configure exchanges, and double-buffered
// surface state. The desktop package binds these to views.
package xdg

import (
	"errors"
	"fmt"
	"slices"

	"deedles.dev/ximage/geom"
	wlroots "github.com/tokyo4j/wlroots"
)

// Edges is a bitmask of window edges, used to describe which edges an
// interactive resize originates from.
type Edges uint32

const (
	EdgeNone   Edges = 0
	EdgeTop    Edges = 1 << 0
	EdgeBottom Edges = 1 << 1
	EdgeLeft   Edges = 1 << 2
	EdgeRight  Edges = 1 << 3
)

// A Seat identifies the named seat a client request originated from.
// The compositing core references seats, it never owns them.
type Seat interface {
	Name() string
}

// ErrRoleAssigned reports an attempt to assign a role to a surface
// that already has one. The offending surface is force-closed.
var ErrRoleAssigned = errors.New("surface role already assigned")

// A Role is the immutable classification of a surface, assigned
// exactly once. The concrete types are *Toplevel and *Popup.
type Role interface {
	role()
}

// A Shell hands out shell surfaces and announces them once they gain
// a role.
type Shell struct {
	newSurface wlroots.Signal[*Surface]
}

func NewShell() *Shell {
	return new(Shell)
}

// OnNewSurface registers a callback for surfaces that have just been
// assigned a role, popups included.
func (sh *Shell) OnNewSurface(cb func(*Surface)) *wlroots.Listener {
	return sh.newSurface.Add(cb)
}

// NewSurface creates a role-less surface. It is inert until a role is
// assigned with AssignToplevel or AssignPopup.
func (sh *Shell) NewSurface() *Surface {
	return &Surface{shell: sh}
}

// State is the committed client state of a surface.
type State struct {
	Buffer   *wlroots.Buffer
	Geometry geom.Rect[int]
}

// A Surface is one client-controlled drawable region and its
// negotiation state. Client-driver methods (Attach, AckConfigure,
// Commit, Pong, Destroy) are called on behalf of the remote client;
// everything else is for the compositor side.
type Surface struct {
	shell     *Shell
	role      Role
	mapped    bool
	destroyed bool

	// Configure serials are allocated from lastSerial, strictly
	// monotonically per surface. Zero never names a configure.
	lastSerial  uint32
	ackedSerial uint32
	pingSerial  uint32

	current State
	pending struct {
		buffer      *wlroots.Buffer
		attached    bool
		geometry    geom.Rect[int]
		hasGeometry bool
	}

	popups []*Popup

	destroySig wlroots.Signal[*Surface]
	mapSig     wlroots.Signal[*Surface]
	unmapSig   wlroots.Signal[*Surface]
	commitSig  wlroots.Signal[*Surface]
	newPopup   wlroots.Signal[*Popup]
	closeSig   wlroots.Signal[*Surface]
	pingSig    wlroots.Signal[uint32]
	pongSig    wlroots.Signal[uint32]
}

// Role is the surface's role, or nil if none was assigned yet.
func (s *Surface) Role() Role { return s.role }

func (s *Surface) Mapped() bool { return s.mapped }

// Current is the state the client committed most recently.
func (s *Surface) Current() State { return s.current }

// AckedConfigureSerial is the serial of the most recent configure the
// client has acknowledged, or zero if it never acknowledged one.
func (s *Surface) AckedConfigureSerial() uint32 { return s.ackedSerial }

// Popups lists the surface's live child popups.
func (s *Surface) Popups() []*Popup { return slices.Clone(s.popups) }

func (s *Surface) assignRole(r Role) error {
	if s.role != nil {
		// Redefining a role is fatal to the surface.
		s.SendClose()
		s.Destroy()
		return fmt.Errorf("assign role: %w", ErrRoleAssigned)
	}
	s.role = r
	return nil
}

// AssignToplevel makes the surface a toplevel window.
func (s *Surface) AssignToplevel() (*Toplevel, error) {
	t := &Toplevel{surface: s}
	if err := s.assignRole(t); err != nil {
		return nil, err
	}
	s.shell.newSurface.Emit(s)
	return t, nil
}

// AssignPopup makes the surface a popup anchored to parent. The
// parent's new-popup observers are notified.
func (s *Surface) AssignPopup(parent *Surface) (*Popup, error) {
	p := &Popup{surface: s, parent: parent}
	if err := s.assignRole(p); err != nil {
		return nil, err
	}
	parent.popups = append(parent.popups, p)
	s.shell.newSurface.Emit(s)
	parent.newPopup.Emit(p)
	return p, nil
}

// Attach sets the buffer to be applied by the next commit. Attaching
// nil and committing unmaps the surface.
func (s *Surface) Attach(buf *wlroots.Buffer) {
	s.pending.buffer = buf
	s.pending.attached = true
}

// SetWindowGeometry sets the pending window geometry: the part of the
// buffer that counts as the window, applied by the next commit.
func (s *Surface) SetWindowGeometry(r geom.Rect[int]) {
	s.pending.geometry = r
	s.pending.hasGeometry = true
}

// AckConfigure acknowledges a previously sent configure. Serials not
// naming a sent configure are rejected; roles that never send
// configures have none to acknowledge.
func (s *Surface) AckConfigure(serial uint32) error {
	if t, ok := s.role.(*Toplevel); ok {
		return t.ackConfigure(serial)
	}
	return fmt.Errorf("ack configure: unknown serial %d", serial)
}

// Commit applies the pending state: "apply my latest buffer and state
// now". Mapping follows the buffer: a first buffer maps the surface, a
// nil buffer unmaps it.
func (s *Surface) Commit() {
	if s.destroyed {
		return
	}

	if s.pending.attached {
		s.current.Buffer = s.pending.buffer
		s.pending.buffer = nil
		s.pending.attached = false
	}
	if s.pending.hasGeometry {
		s.current.Geometry = s.pending.geometry
		s.pending.hasGeometry = false
	}
	if t, ok := s.role.(*Toplevel); ok {
		t.applyCommit()
	}

	switch {
	case !s.mapped && s.role != nil && s.current.Buffer != nil:
		s.mapped = true
		s.mapSig.Emit(s)
	case s.mapped && s.current.Buffer == nil:
		s.mapped = false
		s.unmapSig.Emit(s)
	}

	s.commitSig.Emit(s)
}

// SendClose asks the client to close the surface.
func (s *Surface) SendClose() {
	s.closeSig.Emit(s)
}

// Ping sends a liveness probe to the client and returns its serial.
func (s *Surface) Ping() uint32 {
	s.pingSerial++
	s.pingSig.Emit(s.pingSerial)
	return s.pingSerial
}

// Pong is the client's answer to a Ping. Stale serials are ignored.
func (s *Surface) Pong(serial uint32) {
	if serial == s.pingSerial {
		s.pongSig.Emit(serial)
	}
}

// Destroy tears the surface down from any state: child popups are
// destroyed recursively, a mapped surface is unmapped first, and a
// popup detaches from its parent. All observers are notified exactly
// once.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	for _, p := range slices.Clone(s.popups) {
		p.surface.Destroy()
	}

	if s.mapped {
		s.mapped = false
		s.unmapSig.Emit(s)
	}
	s.destroySig.Emit(s)

	if p, ok := s.role.(*Popup); ok && p.parent != nil {
		if i := slices.Index(p.parent.popups, p); i >= 0 {
			p.parent.popups = slices.Delete(p.parent.popups, i, i+1)
		}
		p.parent = nil
	}
}

func (s *Surface) OnDestroy(cb func(*Surface)) *wlroots.Listener {
	return s.destroySig.Add(cb)
}

func (s *Surface) OnMap(cb func(*Surface)) *wlroots.Listener {
	return s.mapSig.Add(cb)
}

func (s *Surface) OnUnmap(cb func(*Surface)) *wlroots.Listener {
	return s.unmapSig.Add(cb)
}

func (s *Surface) OnCommit(cb func(*Surface)) *wlroots.Listener {
	return s.commitSig.Add(cb)
}

func (s *Surface) OnNewPopup(cb func(*Popup)) *wlroots.Listener {
	return s.newPopup.Add(cb)
}

func (s *Surface) OnCloseRequested(cb func(*Surface)) *wlroots.Listener {
	return s.closeSig.Add(cb)
}

func (s *Surface) OnPing(cb func(uint32)) *wlroots.Listener {
	return s.pingSig.Add(cb)
}

func (s *Surface) OnPong(cb func(uint32)) *wlroots.Listener {
	return s.pongSig.Add(cb)
}
