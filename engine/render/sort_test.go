package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/gputest"
)

// sortEntry is one draw call with its own target container.
type sortEntry struct {
	d        *DrawCall
	material *data.Provider
}

func newSortEntry(t *testing.T, f *fixture, id uint32, p *Pass, priority, z float32) sortEntry {
	t.Helper()
	target := data.NewContainer()
	material := data.NewProvider("material")
	require.NoError(t, data.Set(material, "position", gpu.VertexAttribute{Buffer: f.vb, Name: "position", Size: 3}))
	require.NoError(t, data.Set(material, IndicesProperty, f.ib))
	require.NoError(t, data.Set(material, "diffuseColor", mgl32.Vec4{1, 1, 1, 1}))
	require.NoError(t, data.Set(material, StatePriority, priority))
	require.NoError(t, data.Set(material, ModelToWorldMatrixProperty, mgl32.Translate3D(0, 0, z)))
	require.NoError(t, target.AddProvider(material))

	scope := data.Scope{Target: target, Renderer: f.scope.Renderer, Root: f.scope.Root}
	d := NewDrawCall(id, p, scope, f.rec)
	require.NoError(t, d.Update())
	return sortEntry{d: d, material: material}
}

func ids(dcs []*DrawCall) []uint32 {
	out := make([]uint32, len(dcs))
	for i, d := range dcs {
		out[i] = d.ID()
	}
	return out
}

func withPriority(options ...PassBuilderOption) []PassBuilderOption {
	return append(options, WithStateBinding(StatePriority, Bind(StatePriority)))
}

func TestSortOpaqueByPriorityProgramThenID(t *testing.T) {
	f := newFixture(t)
	p1 := f.pass(withPriority()...)
	p2 := NewPass("other", gpu.NewProgram("other", colorShader, colorShader), withPriority()...)

	// p1 is built first, so its program handle is the lower one.
	e := []sortEntry{
		newSortEntry(t, f, 3, p1, PriorityOpaque, 0),
		newSortEntry(t, f, 4, p2, PriorityOpaque, 0),
		newSortEntry(t, f, 2, p1, PriorityBackground, 0),
		newSortEntry(t, f, 1, p1, PriorityOpaque+0.0001, 0),
		newSortEntry(t, f, 0, p2, PriorityLast, 0),
	}
	require.Less(t, p1.Program().Handle(), p2.Program().Handle())

	dcs := []*DrawCall{e[0].d, e[1].d, e[2].d, e[3].d, e[4].d}
	SortOpaque(dcs)
	assert.Equal(t, []uint32{2, 1, 3, 4, 0}, ids(dcs))

	// Sorting is repeatable from any starting order.
	dcs = []*DrawCall{e[4].d, e[3].d, e[2].d, e[1].d, e[0].d}
	SortOpaque(dcs)
	assert.Equal(t, []uint32{2, 1, 3, 4, 0}, ids(dcs))
}

func TestSortTransparentBackToFront(t *testing.T) {
	f := newFixture(t)
	p := f.pass(withPriority()...)

	e := []sortEntry{
		newSortEntry(t, f, 0, p, PriorityTransparent, 1),
		newSortEntry(t, f, 1, p, PriorityTransparent, 5),
		newSortEntry(t, f, 2, p, PriorityTransparent, 3),
		newSortEntry(t, f, 3, p, PriorityTransparent, 3),
		newSortEntry(t, f, 4, p, PriorityOpaque, 3),
	}
	dcs := []*DrawCall{e[0].d, e[3].d, e[2].d, e[4].d, e[1].d}
	SortTransparent(dcs)
	assert.Equal(t, []uint32{1, 4, 2, 3, 0}, ids(dcs))

	// Moving a draw call re-sorts it after its trigger fires.
	require.NoError(t, data.Set(e[0].material, ModelToWorldMatrixProperty, mgl32.Translate3D(0, 0, 10)))
	SortTransparent(dcs)
	assert.Equal(t, []uint32{0, 1, 4, 2, 3}, ids(dcs))
}

func TestSortTransparentEqualDepthIsStableAcrossFrames(t *testing.T) {
	f := newFixture(t)
	p := f.pass(withPriority()...)

	e := []sortEntry{
		newSortEntry(t, f, 5, p, PriorityTransparent, 4),
		newSortEntry(t, f, 2, p, PriorityTransparent, 4),
		newSortEntry(t, f, 9, p, PriorityTransparent+0.0004, 4),
		newSortEntry(t, f, 7, p, PriorityLast, 4),
	}
	want := []uint32{2, 5, 9, 7}

	starts := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}
	moves := 0
	for _, start := range starts {
		dcs := make([]*DrawCall, len(start))
		for i, j := range start {
			dcs[i] = e[j].d
		}
		for frame := 0; frame < 3; frame++ {
			// A sideways move fires the trigger and leaves every depth equal.
			moves++
			x := float32(moves)
			for _, entry := range e {
				require.NoError(t, data.Set(entry.material, ModelToWorldMatrixProperty, mgl32.Translate3D(x, 0, 4)))
			}
			SortTransparent(dcs)
			assert.Equal(t, want, ids(dcs), "start %v frame %d", start, frame)
		}
	}
}

func TestPartitionByZSorted(t *testing.T) {
	f := newFixture(t)
	opaquePass := f.pass()
	transparentPass := f.pass(WithDefaultStates(States{Priority: PriorityTransparent, ZSorted: true, RenderState: gpu.DefaultRenderState()}))
	a := NewDrawCall(0, opaquePass, f.scope, f.rec)
	b := NewDrawCall(1, transparentPass, f.scope, f.rec)

	opaque, transparent := Partition([]*DrawCall{a, b})
	assert.Equal(t, []*DrawCall{a}, opaque)
	assert.Equal(t, []*DrawCall{b}, transparent)
	assert.Equal(t, 0, f.rec.Created(gputest.KindProgram), "partition does not build")
}
