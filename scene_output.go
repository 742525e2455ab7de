package wlroots

import (
	"image"
	"image/draw"
	"math"
	"slices"

	"deedles.dev/ximage/geom"
	"github.com/tokyo4j/wlroots/internal/drm"
	"github.com/tokyo4j/wlroots/internal/fimg"
	xdraw "golang.org/x/image/draw"
)

// A SceneOutput binds a scene to one output. It tracks which buffer
// nodes intersect the output's visible region, accumulates damage, and
// composites visible nodes into frames for the output device.
type SceneOutput struct {
	scene  *Scene
	output *Output
	pos    geom.Point[int]
	damage []geom.Rect[int]
}

// NewOutput binds out to the scene at layout position (0, 0).
func (s *Scene) NewOutput(out *Output) *SceneOutput {
	so := &SceneOutput{
		scene:  s,
		output: out,
	}
	s.outputs = append(s.outputs, so)
	s.update()
	return so
}

func (so *SceneOutput) Output() *Output { return so.output }

func (so *SceneOutput) Position() (x, y int) { return so.pos.X, so.pos.Y }

// SetPosition moves the output within the scene's coordinate space.
func (so *SceneOutput) SetPosition(x, y int) {
	p := geom.Pt(x, y)
	if so.pos == p {
		return
	}
	so.pos = p
	so.scene.update()
}

// Destroy unbinds the output from the scene. Buffer nodes that
// intersected it get a leave notification.
func (so *SceneOutput) Destroy() {
	i := slices.Index(so.scene.outputs, so)
	if i < 0 {
		return
	}
	so.scene.outputs = slices.Delete(so.scene.outputs, i, i+1)
	so.scene.update()
}

// box is the output's visible region in scene coordinates.
func (so *SceneOutput) box() geom.Rect[int] {
	w, h := so.output.EffectiveResolution()
	return geom.Rt(so.pos.X, so.pos.Y, so.pos.X+w, so.pos.Y+h)
}

// Commit composites the currently visible buffer nodes into a frame
// and submits it to the output device. The commit error, if any, is
// returned as is; retry policy belongs to the device.
func (so *SceneOutput) Commit() error {
	// Mode and scale may have changed since the last mutation.
	so.scene.update()

	mode := so.output.Device().Mode()
	scale := so.output.Scale()
	frame := image.NewRGBA(image.Rect(0, 0, mode.Width, mode.Height))

	box := so.box()
	so.scene.walkBuffers(func(b *SceneBuffer, abs geom.Point[int], vis bool) {
		if !vis || b.buffer == nil {
			return
		}
		rect := b.bounds(abs)
		if !rect.Overlaps(box) {
			return
		}
		so.compositeBuffer(frame, b.buffer, rect, scale)
	})

	damage := so.takeDamage(scale, frame.Rect)
	return so.output.Device().Commit(&Frame{Image: frame, Damage: damage})
}

func (so *SceneOutput) compositeBuffer(frame *image.RGBA, buf *Buffer, rect geom.Rect[int], scale float64) {
	data, format, stride, err := buf.BeginDataAccess(AccessRead)
	if err != nil {
		return
	}
	defer buf.EndDataAccess()

	if format != drm.FormatARGB8888 {
		// No implicit format conversion.
		return
	}
	src := &fimg.PARGB{
		Pix:    data,
		Stride: stride,
		Rect:   image.Rect(0, 0, buf.Width(), buf.Height()),
	}

	dst := so.frameRect(rect, scale)
	if scale == 1 {
		draw.Draw(frame, dst, src, src.Rect.Min, draw.Over)
		return
	}
	xdraw.NearestNeighbor.Scale(frame, dst, src, src.Rect, xdraw.Over, nil)
}

// frameRect converts a scene-coordinate rectangle to output pixels.
func (so *SceneOutput) frameRect(r geom.Rect[int], scale float64) image.Rectangle {
	local := r.Sub(so.pos)
	return image.Rect(
		int(math.Round(float64(local.Min.X)*scale)),
		int(math.Round(float64(local.Min.Y)*scale)),
		int(math.Round(float64(local.Max.X)*scale)),
		int(math.Round(float64(local.Max.Y)*scale)),
	)
}

func (so *SceneOutput) takeDamage(scale float64, bounds image.Rectangle) []geom.Rect[int] {
	var out []geom.Rect[int]
	for _, r := range so.damage {
		d := geom.FromImageRect(so.frameRect(r, scale).Intersect(bounds))
		if !d.Empty() {
			out = append(out, d)
		}
	}
	so.damage = nil
	return out
}
