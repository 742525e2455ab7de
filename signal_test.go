package wlroots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalOrder(t *testing.T) {
	var s Signal[int]
	var got []int

	s.Add(func(v int) { got = append(got, v) })
	s.Add(func(v int) { got = append(got, v*10) })
	s.Emit(3)

	assert.Equal(t, []int{3, 30}, got)
}

func TestListenerDestroy(t *testing.T) {
	var s Signal[int]
	var calls int

	lis := s.Add(func(int) { calls++ })
	s.Emit(0)
	lis.Destroy()
	lis.Destroy()
	s.Emit(0)

	assert.Equal(t, 1, calls)
}

func TestListenerDestroyDuringEmit(t *testing.T) {
	var s Signal[int]
	var calls int

	var lis *Listener
	s.Add(func(int) { lis.Destroy() })
	lis = s.Add(func(int) { calls++ })

	s.Emit(0)
	s.Emit(0)

	assert.Equal(t, 0, calls)
}

func TestListenerDestroyDuringNestedEmit(t *testing.T) {
	var s Signal[int]
	var calls []string

	var second *Listener
	s.Add(func(int) {
		calls = append(calls, "first")
		second.Destroy()
	})
	second = s.Add(func(int) { calls = append(calls, "second") })
	s.Add(func(v int) {
		calls = append(calls, "third")
		if v == 0 {
			s.Emit(1)
		}
	})

	// The detached handler must be skipped by both the inner and the
	// still-running outer emit.
	s.Emit(0)
	assert.Equal(t, []string{"first", "third", "first", "third"}, calls)
}

func TestNilListener(t *testing.T) {
	var lis *Listener
	assert.NotPanics(t, func() { lis.Destroy() })
}
