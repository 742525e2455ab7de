package wlroots

import (
	"slices"

	"deedles.dev/ximage/geom"
)

// A SceneNode is one element of the scene tree: the state common to
// every node variant. A node is effectively visible only if it and all
// of its ancestors are enabled.
type SceneNode struct {
	scene   *Scene
	parent  *SceneTree
	pos     geom.Point[int]
	enabled bool
	owner   sceneVariant
}

// sceneVariant is the closed set of concrete node types.
type sceneVariant interface {
	node() *SceneNode
}

func (n *SceneNode) node() *SceneNode { return n }

func (n *SceneNode) init(scene *Scene, parent *SceneTree, owner sceneVariant) {
	n.scene = scene
	n.parent = parent
	n.enabled = true
	n.owner = owner
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

func (n *SceneNode) Enabled() bool { return n.enabled }

func (n *SceneNode) Position() (x, y int) { return n.pos.X, n.pos.Y }

// SetEnabled shows or hides the subtree rooted at n. The change is
// reflected in the next composited frame; frames already submitted are
// unaffected.
func (n *SceneNode) SetEnabled(enabled bool) {
	if n.enabled == enabled {
		return
	}
	n.enabled = enabled
	n.scene.update()
}

func (n *SceneNode) SetPosition(x, y int) {
	p := geom.Pt(x, y)
	if n.pos == p {
		return
	}
	n.pos = p
	n.scene.update()
}

// Destroy removes n from the tree, cascading to any children.
func (n *SceneNode) Destroy() {
	switch v := n.owner.(type) {
	case *SceneTree:
		for len(v.children) > 0 {
			v.children[len(v.children)-1].Destroy()
		}
	case *SceneBuffer:
		v.release()
	}

	if n.parent != nil {
		i := slices.Index(n.parent.children, n)
		n.parent.children = slices.Delete(n.parent.children, i, i+1)
		n.parent = nil
	}
	n.scene.update()
}

// visible reports whether n and all its ancestors are enabled.
func (n *SceneNode) visible() bool {
	for m := n; m != nil; {
		if !m.enabled {
			return false
		}
		if m.parent == nil {
			return true
		}
		m = &m.parent.SceneNode
	}
	return true
}

// A SceneTree is a container node. Children are ordered back to front:
// later children composite on top of earlier ones.
type SceneTree struct {
	SceneNode
	children []*SceneNode
}

// NewTree creates an empty container under t.
func (t *SceneTree) NewTree() *SceneTree {
	child := new(SceneTree)
	child.init(t.scene, t, child)
	return child
}

// NewBuffer attaches buf to the tree as a new buffer node. The node
// takes its own reference to the buffer.
func (t *SceneTree) NewBuffer(buf *Buffer) *SceneBuffer {
	b := new(SceneBuffer)
	b.init(t.scene, t, b)
	if buf != nil {
		b.buffer = buf.Lock()
	}
	t.scene.update()
	return b
}

// A SceneBuffer displays a Buffer. It owns one reference to the buffer
// for as long as the buffer is attached.
type SceneBuffer struct {
	SceneNode
	buffer *Buffer

	outputs  []*SceneOutput
	prevRect geom.Rect[int]
	prevVis  bool

	outputEnter    Signal[*SceneOutput]
	outputLeave    Signal[*SceneOutput]
	outputsChanged Signal[[]*SceneOutput]
}

func (b *SceneBuffer) Buffer() *Buffer { return b.buffer }

// SetBuffer replaces the displayed buffer, damaging the node's whole
// region. A nil buffer detaches without destroying the node.
func (b *SceneBuffer) SetBuffer(buf *Buffer) {
	if b.buffer == buf {
		if buf != nil {
			// Same contents recommitted; still needs a redraw.
			b.scene.DamageRegion(b.prevRect)
		}
		return
	}
	if b.buffer != nil {
		b.buffer.Unlock()
	}
	b.buffer = nil
	if buf != nil {
		b.buffer = buf.Lock()
	}
	b.scene.update()
}

// OnOutputEnter registers a callback for when the node starts
// intersecting an output's visible region.
func (b *SceneBuffer) OnOutputEnter(cb func(*SceneOutput)) *Listener {
	return b.outputEnter.Add(cb)
}

// OnOutputLeave registers a callback for when the node stops
// intersecting an output's visible region.
func (b *SceneBuffer) OnOutputLeave(cb func(*SceneOutput)) *Listener {
	return b.outputLeave.Add(cb)
}

// OnOutputsChanged registers a callback for changes to the set of
// outputs the node intersects. It fires after the corresponding enter
// and leave callbacks.
func (b *SceneBuffer) OnOutputsChanged(cb func([]*SceneOutput)) *Listener {
	return b.outputsChanged.Add(cb)
}

// Outputs is the set of outputs the node currently intersects.
func (b *SceneBuffer) Outputs() []*SceneOutput {
	return slices.Clone(b.outputs)
}

// release detaches the node from its outputs and buffer on destroy.
// The node is about to leave the tree, so update will not see it; the
// leave notifications and damage happen here.
func (b *SceneBuffer) release() {
	if b.prevVis {
		b.scene.DamageRegion(b.prevRect)
	}
	if len(b.outputs) > 0 {
		for _, so := range b.outputs {
			b.outputLeave.Emit(so)
		}
		b.outputs = nil
		b.outputsChanged.Emit(nil)
	}
	if b.buffer != nil {
		b.buffer.Unlock()
		b.buffer = nil
	}
}

// bounds is the node's rectangle in scene coordinates.
func (b *SceneBuffer) bounds(abs geom.Point[int]) geom.Rect[int] {
	if b.buffer == nil {
		return geom.Rect[int]{}
	}
	return geom.Rt(abs.X, abs.Y, abs.X+b.buffer.Width(), abs.Y+b.buffer.Height())
}

// A Scene is the root of a scene graph plus its output bindings.
type Scene struct {
	Tree    SceneTree
	outputs []*SceneOutput
}

func NewScene() *Scene {
	s := new(Scene)
	s.Tree.init(s, nil, &s.Tree)
	return s
}

// DamageRegion marks a scene-coordinate region as needing redraw on
// every output it intersects.
func (s *Scene) DamageRegion(r geom.Rect[int]) {
	if r.Empty() {
		return
	}
	for _, so := range s.outputs {
		d := r.Intersect(so.box())
		if !d.Empty() {
			so.damage = append(so.damage, d)
		}
	}
}

// update re-derives per-buffer visibility, damage, and output
// intersection sets after any tree or output mutation.
func (s *Scene) update() {
	s.walkBuffers(func(b *SceneBuffer, abs geom.Point[int], vis bool) {
		rect := b.bounds(abs)
		vis = vis && b.buffer != nil

		if vis != b.prevVis || rect != b.prevRect {
			if b.prevVis {
				s.DamageRegion(b.prevRect)
			}
			if vis {
				s.DamageRegion(rect)
			}
		}

		var now []*SceneOutput
		if vis {
			for _, so := range s.outputs {
				if rect.Overlaps(so.box()) {
					now = append(now, so)
				}
			}
		}
		changed := !slices.Equal(now, b.outputs)
		for _, so := range now {
			if !slices.Contains(b.outputs, so) {
				b.outputEnter.Emit(so)
			}
		}
		for _, so := range b.outputs {
			if !slices.Contains(now, so) {
				b.outputLeave.Emit(so)
			}
		}
		b.outputs = now
		if changed {
			b.outputsChanged.Emit(slices.Clone(now))
		}

		b.prevRect, b.prevVis = rect, vis
	})
}

// walkBuffers visits every buffer node depth-first in back-to-front
// order, with its absolute position and inherited visibility.
func (s *Scene) walkBuffers(f func(b *SceneBuffer, abs geom.Point[int], vis bool)) {
	var walk func(n *SceneNode, off geom.Point[int], vis bool)
	walk = func(n *SceneNode, off geom.Point[int], vis bool) {
		abs := off.Add(n.pos)
		vis = vis && n.enabled
		switch v := n.owner.(type) {
		case *SceneTree:
			for _, c := range slices.Clone(v.children) {
				walk(c, abs, vis)
			}
		case *SceneBuffer:
			f(v, abs, vis)
		}
	}
	walk(&s.Tree.SceneNode, geom.Point[int]{}, true)
}
