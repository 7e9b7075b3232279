package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWindowRejectsEmptySize(t *testing.T) {
	_, err := NewWindow(WithSize(0, 720))
	assert.Error(t, err)
}

func TestResizedSkipsMinimizedSizes(t *testing.T) {
	w := &engineWindow{}
	var got [][2]int
	w.SetResizeCallback(func(width, height int) { got = append(got, [2]int{width, height}) })

	w.resized(800, 600)
	w.resized(0, 0)
	w.resized(1024, 768)

	assert.Equal(t, [][2]int{{800, 600}, {1024, 768}}, got)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 768, w.Height())
}

func TestClosedWindowIsInert(t *testing.T) {
	w := &engineWindow{}
	assert.Nil(t, w.SurfaceDescriptor())
	assert.False(t, w.Poll())
	assert.Error(t, w.Close())
}
