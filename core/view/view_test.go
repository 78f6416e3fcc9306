package view

import (
	"errors"
	"strings"
	"testing"

	"livelist/core/concat"
	"livelist/core/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_FollowsComposite(t *testing.T) {
	first := stream.NewList("a", "b")
	root := stream.NewList[stream.Observable[string]](first, stream.NewList("c"))
	v := New[string](concat.New[string](root), nil)
	defer v.Close()

	snapshot, gen := v.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, snapshot)
	assert.Equal(t, uint64(1), gen)

	require.NoError(t, first.Insert(0, "z"))
	snapshot, gen = v.Snapshot()
	assert.Equal(t, []string{"z", "a", "b", "c"}, snapshot)
	assert.Equal(t, uint64(2), gen)
	assert.Equal(t, 4, v.Len())
	assert.Equal(t, 2, v.Changes())

	got, err := v.At(3)
	require.NoError(t, err)
	assert.Equal(t, "c", got)
}

func TestView_CacheIsPerGeneration(t *testing.T) {
	l := stream.NewList("a")
	v := New[string](l, nil)
	defer v.Close()

	before := v.Cache()
	_, err := before.At(0)
	require.NoError(t, err)

	l.Append("b")
	assert.NotSame(t, before, v.Cache())
	assert.Equal(t, 2, v.Cache().Len())
}

func TestView_CloseStopsUpdates(t *testing.T) {
	l := stream.NewList("a")
	v := New[string](l, nil)
	v.Close()

	l.Append("b")
	assert.Equal(t, uint64(1), v.Generation())
	assert.Zero(t, l.Subscribers())
}

func TestMaterialized_MemoizesWithinGeneration(t *testing.T) {
	l := stream.NewList("alpha", "beta")
	v := New[string](l, nil)
	defer v.Close()

	calls := map[string]int{}
	m := Materialize(v, func(s string) (string, error) {
		calls[s]++
		if s == "bad" {
			return "", errors.New("cannot materialize")
		}
		return strings.ToUpper(s), nil
	})

	for i := 0; i < 3; i++ {
		got, err := m.At(1)
		require.NoError(t, err)
		assert.Equal(t, "BETA", got)
	}
	assert.Equal(t, 1, calls["beta"])
	assert.Equal(t, int64(2), m.Stats().StrongHits)

	// A new generation starts from an empty cache.
	require.NoError(t, l.Insert(0, "bad"))
	_, err := m.At(0)
	assert.EqualError(t, err, "cannot materialize")
	got, err := m.At(2)
	require.NoError(t, err)
	assert.Equal(t, "BETA", got)
	assert.Equal(t, 2, calls["beta"])

	sub, err := m.Subrange(1, 3)
	require.NoError(t, err)
	got, err = sub.At(0)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", got)

	assert.Equal(t, 2, m.Release())
}
