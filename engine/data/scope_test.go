package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeResolutionPrecedence(t *testing.T) {
	target, renderer, root := NewContainer(), NewContainer(), NewContainer()
	tp, rp, op := NewProvider("t"), NewProvider("r"), NewProvider("o")
	require.NoError(t, target.AddProvider(tp))
	require.NoError(t, renderer.AddProvider(rp))
	require.NoError(t, root.AddProvider(op))

	require.NoError(t, Set(op, "color", 3))
	require.NoError(t, Set(rp, "color", 2))
	require.NoError(t, Set(tp, "color", 1))
	require.NoError(t, Set(op, "time", 9))

	s := Scope{Target: target, Renderer: renderer, Root: root}

	prop, src, ok := s.Resolve("color")
	require.True(t, ok)
	assert.Equal(t, SourceTarget, src)
	assert.Equal(t, ValueOf(1), prop.Value())

	require.NoError(t, tp.Unset("color"))
	prop, src, _ = s.Resolve("color")
	assert.Equal(t, SourceRenderer, src)
	assert.Equal(t, ValueOf(2), prop.Value())

	prop, src, _ = s.Resolve("time")
	assert.Equal(t, SourceRoot, src)
	assert.Equal(t, ValueOf(9), prop.Value())

	_, _, ok = s.Resolve("missing")
	assert.False(t, ok)

	_, _, ok = s.ResolveFrom(SourceTarget, "time")
	assert.False(t, ok)
}

func TestScopeContainersDeduplicates(t *testing.T) {
	shared := NewContainer()
	s := Scope{Target: shared, Renderer: shared, Root: NewContainer()}
	assert.Len(t, s.Containers(), 2)
	assert.Len(t, Scope{}.Containers(), 0)
}

func TestParseSource(t *testing.T) {
	for in, want := range map[string]Source{"": SourceAny, "target": SourceTarget, "renderer": SourceRenderer, "root": SourceRoot} {
		got, ok := ParseSource(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSource("parent")
	assert.False(t, ok)
}
