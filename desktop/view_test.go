package desktop

import (
	"testing"

	"deedles.dev/ximage/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSurface models a role whose geometry applies synchronously, so
// Configure never returns a serial.
type staticSurface struct {
	min, max   geom.Point[int]
	configured []geom.Point[int]
}

func (s *staticSurface) Activate(bool) {}

func (s *staticSurface) Constraints() (min, max geom.Point[int]) {
	return s.min, s.max
}

func (s *staticSurface) Configure(width, height int) uint32 {
	s.configured = append(s.configured, geom.Pt(width, height))
	return 0
}

func (s *staticSurface) SetMaximized(bool)  {}
func (s *staticSurface) SetFullscreen(bool) {}
func (s *staticSurface) Close()             {}
func (s *staticSurface) Destroy()           {}

func TestMoveResizeWithoutNegotiation(t *testing.T) {
	surf := new(staticSurface)
	v := &View{surface: surf}
	v.width, v.height = 200, 150
	v.Move(100, 100)

	// No serial, no outstanding negotiation: the position applies
	// right away.
	v.MoveResize(50, 100, 250, 200)
	x, y := v.Position()
	assert.Equal(t, 50.0, x)
	assert.Equal(t, 100.0, y)

	require.Len(t, surf.configured, 1)
	assert.Equal(t, geom.Pt(250, 200), surf.configured[0])
}

func TestMoveResizeClampReanchorsImmediately(t *testing.T) {
	surf := &staticSurface{min: geom.Pt(300, 0)}
	v := &View{surface: surf}
	v.width, v.height = 200, 150
	v.Move(100, 100)

	// The proposed 250 clamps up to 300; x shifts left so the right
	// edge stays where the request put it.
	v.MoveResize(50, 100, 250, 200)
	x, _ := v.Position()
	assert.Equal(t, 0.0, x)

	require.Len(t, surf.configured, 1)
	assert.Equal(t, geom.Pt(300, 200), surf.configured[0])
}
