package wlroots

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	name   string
	mode   OutputMode
	scale  float64
	frames []*Frame
	err    error
}

func newTestOutput(name string, w, h int) *testOutput {
	return &testOutput{
		name:  name,
		mode:  OutputMode{Width: w, Height: h, Refresh: 60000},
		scale: 1,
	}
}

func (o *testOutput) Name() string                      { return o.name }
func (o *testOutput) Modes() []OutputMode               { return []OutputMode{o.mode} }
func (o *testOutput) PreferredMode() (OutputMode, bool) { return o.mode, true }
func (o *testOutput) Mode() OutputMode                  { return o.mode }
func (o *testOutput) SetMode(mode OutputMode)           { o.mode = mode }
func (o *testOutput) Scale() float64                    { return o.scale }
func (o *testOutput) SetScale(scale float64)            { o.scale = scale }

func (o *testOutput) Commit(frame *Frame) error {
	if o.err != nil {
		return o.err
	}
	o.frames = append(o.frames, frame)
	return nil
}

func (o *testOutput) lastFrame(t *testing.T) *Frame {
	t.Helper()
	require.NotEmpty(t, o.frames)
	return o.frames[len(o.frames)-1]
}

func paintedBuffer(t *testing.T, w, h int, c color.Color) *RasterBuffer {
	t.Helper()
	buf, err := NewRasterBuffer(w, h)
	require.NoError(t, err)
	draw.Draw(buf.Image(), buf.Image().Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return buf
}

var (
	red  = color.RGBA{R: 0xff, A: 0xff}
	blue = color.RGBA{B: 0xff, A: 0xff}
)

func TestSceneCompositesVisibleBuffer(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	so := scene.NewOutput(NewOutput(dev))

	buf := paintedBuffer(t, 256, 256, red)
	node := scene.Tree.NewBuffer(&buf.Buffer)
	node.SetPosition(50, 50)
	buf.Drop()

	require.NoError(t, so.Commit())
	frame := dev.lastFrame(t)
	assert.Equal(t, red, frame.Image.RGBAAt(60, 60))
	assert.Equal(t, color.RGBA{}, frame.Image.RGBAAt(10, 10))
}

func TestSceneVisibilityNeedsAllAncestors(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	so := scene.NewOutput(NewOutput(dev))

	group := scene.Tree.NewTree()
	buf := paintedBuffer(t, 64, 64, red)
	node := group.NewBuffer(&buf.Buffer)
	buf.Drop()

	group.SetEnabled(false)
	require.NoError(t, so.Commit())
	assert.Equal(t, color.RGBA{}, dev.lastFrame(t).Image.RGBAAt(5, 5))

	// Enabling the leaf alone changes nothing while an ancestor is
	// disabled.
	node.SetEnabled(true)
	require.NoError(t, so.Commit())
	assert.Equal(t, color.RGBA{}, dev.lastFrame(t).Image.RGBAAt(5, 5))

	group.SetEnabled(true)
	require.NoError(t, so.Commit())
	assert.Equal(t, red, dev.lastFrame(t).Image.RGBAAt(5, 5))
}

func TestSceneSiblingOrder(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	so := scene.NewOutput(NewOutput(dev))

	rb := paintedBuffer(t, 64, 64, red)
	scene.Tree.NewBuffer(&rb.Buffer)
	rb.Drop()

	bb := paintedBuffer(t, 64, 64, blue)
	scene.Tree.NewBuffer(&bb.Buffer)
	bb.Drop()

	// Later siblings draw on top.
	require.NoError(t, so.Commit())
	assert.Equal(t, blue, dev.lastFrame(t).Image.RGBAAt(5, 5))
}

func TestSceneToggleWithinFrame(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	so := scene.NewOutput(NewOutput(dev))

	buf := paintedBuffer(t, 64, 64, red)
	node := scene.Tree.NewBuffer(&buf.Buffer)
	buf.Drop()

	// Only the state at commit time matters: a disable/enable pair
	// inside one frame boundary leaves the buffer visible.
	node.SetEnabled(false)
	node.SetEnabled(true)
	require.NoError(t, so.Commit())
	assert.Equal(t, red, dev.lastFrame(t).Image.RGBAAt(5, 5))

	// Disabling before the next frame excludes it from that frame
	// only.
	node.SetEnabled(false)
	require.NoError(t, so.Commit())
	assert.Equal(t, color.RGBA{}, dev.lastFrame(t).Image.RGBAAt(5, 5))

	node.SetEnabled(true)
	require.NoError(t, so.Commit())
	assert.Equal(t, red, dev.lastFrame(t).Image.RGBAAt(5, 5))
}

func TestSceneOutputEnterLeave(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	so := scene.NewOutput(NewOutput(dev))

	buf := paintedBuffer(t, 64, 64, red)

	var entered, left, changed int
	node := scene.Tree.NewBuffer(&buf.Buffer)
	buf.Drop()
	node.OnOutputEnter(func(*SceneOutput) { entered++ })
	node.OnOutputLeave(func(*SceneOutput) { left++ })
	node.OnOutputsChanged(func([]*SceneOutput) { changed++ })

	// Already on the output; move it off and back on.
	assert.Equal(t, []*SceneOutput{so}, node.Outputs())

	node.SetPosition(10000, 10000)
	assert.Equal(t, 1, left)
	assert.Empty(t, node.Outputs())

	node.SetPosition(0, 0)
	assert.Equal(t, 1, entered)
	assert.Equal(t, 2, changed)

	node.Destroy()
	assert.Equal(t, 2, left)
	assert.Equal(t, 3, changed)
}

func TestSceneScale(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 1024, 768)
	so := scene.NewOutput(NewOutput(dev))

	buf := paintedBuffer(t, 100, 100, red)
	node := scene.Tree.NewBuffer(&buf.Buffer)
	node.SetPosition(50, 50)
	buf.Drop()

	dev.SetScale(2)
	require.NoError(t, so.Commit())
	frame := dev.lastFrame(t)

	// Scene coordinates double: the node covers (100,100)-(300,300).
	assert.Equal(t, red, frame.Image.RGBAAt(150, 150))
	assert.Equal(t, red, frame.Image.RGBAAt(290, 290))
	assert.Equal(t, color.RGBA{}, frame.Image.RGBAAt(90, 90))
	assert.Equal(t, color.RGBA{}, frame.Image.RGBAAt(310, 310))
}

func TestSceneCommitError(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	dev.err = errors.New("device gone")
	so := scene.NewOutput(NewOutput(dev))

	// The error is surfaced, not retried.
	err := so.Commit()
	assert.ErrorContains(t, err, "device gone")
	assert.Empty(t, dev.frames)
}

func TestSceneDamageReported(t *testing.T) {
	scene := NewScene()
	dev := newTestOutput("test-0", 640, 480)
	so := scene.NewOutput(NewOutput(dev))

	buf := paintedBuffer(t, 64, 64, red)
	node := scene.Tree.NewBuffer(&buf.Buffer)
	node.SetPosition(10, 10)
	buf.Drop()

	require.NoError(t, so.Commit())

	// A quiet frame carries no damage.
	require.NoError(t, so.Commit())
	assert.Empty(t, dev.lastFrame(t).Damage)

	node.SetPosition(20, 20)
	require.NoError(t, so.Commit())
	assert.NotEmpty(t, dev.lastFrame(t).Damage)
}

func TestSceneBufferReferences(t *testing.T) {
	scene := NewScene()

	buf := paintedBuffer(t, 16, 16, red)
	a := scene.Tree.NewBuffer(&buf.Buffer)
	b := scene.Tree.NewBuffer(&buf.Buffer)
	buf.Drop()

	// Two nodes share the buffer; it lives until both let go.
	a.Destroy()
	_, _, _, err := buf.BeginDataAccess(AccessRead)
	require.NoError(t, err)
	buf.EndDataAccess()

	b.Destroy()
	_, _, _, err = buf.BeginDataAccess(AccessRead)
	assert.ErrorIs(t, err, ErrBufferDestroyed)
}

func TestSceneCascadingDestroy(t *testing.T) {
	scene := NewScene()

	group := scene.Tree.NewTree()
	buf := paintedBuffer(t, 16, 16, red)
	group.NewBuffer(&buf.Buffer)
	buf.Drop()

	group.Destroy()
	_, _, _, err := buf.BeginDataAccess(AccessRead)
	assert.ErrorIs(t, err, ErrBufferDestroyed)
}
