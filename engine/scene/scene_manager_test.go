package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
)

type fakeRenderer struct {
	BaseComponent
	name     string
	priority float32
	enabled  bool
	err      error
	order    *[]string
}

func (f *fakeRenderer) Enabled() bool           { return f.enabled }
func (f *fakeRenderer) RenderPriority() float32 { return f.priority }
func (f *fakeRenderer) Render(gpu.Context) error {
	*f.order = append(*f.order, f.name)
	return f.err
}

func TestSceneManagerRendersByPriority(t *testing.T) {
	root, a, _, _, b := buildTree(t)
	m := NewSceneManager(gputest.NewRecorder())
	require.NoError(t, root.AddComponent(m))

	var order []string
	boom := errors.New("boom")
	require.NoError(t, a.AddComponent(&fakeRenderer{name: "low", priority: 0, enabled: true, order: &order}))
	require.NoError(t, b.AddComponent(&fakeRenderer{name: "high", priority: 5, enabled: true, order: &order, err: boom}))
	require.NoError(t, b.AddComponent(&fakeRenderer{name: "off", priority: 9, order: &order}))

	var frames []string
	m.FrameBegin().Connect(func(FrameEvent) { frames = append(frames, "begin") })
	m.FrameEnd().Connect(func(FrameEvent) { frames = append(frames, "end") })

	err := m.NextFrame(1.5, 0.016)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"high", "low"}, order)
	assert.Equal(t, []string{"begin", "end"}, frames)

	dt, err := data.Get[float32](root.Data(), "deltaTime")
	require.NoError(t, err)
	assert.Equal(t, float32(0.016), dt)

	require.Error(t, m.NextFrame(2, 0.5))
	id, _ := data.Get[int](root.Data(), "frameId")
	assert.Equal(t, 1, id)
	assert.Equal(t, uint64(2), m.FrameID())
}

func TestSceneManagerDetachRemovesFrameData(t *testing.T) {
	root := NewNode("root")
	m := NewSceneManager(gputest.NewRecorder())
	require.NoError(t, root.AddComponent(m))
	assert.True(t, root.Data().Has("time"))

	require.NoError(t, root.RemoveComponent(m))
	assert.False(t, root.Data().Has("time"))
	assert.ErrorIs(t, m.NextFrame(0, 0), ErrNotAttached)
}

func TestNewSceneManagerPanicsOnNilContext(t *testing.T) {
	assert.Panics(t, func() { NewSceneManager(nil) })
}
