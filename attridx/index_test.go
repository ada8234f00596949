package attridx

import (
	"testing"

	"github.com/spatialindex/octree/point"
	"github.com/stretchr/testify/require"
)

func TestHistogramSoundness(t *testing.T) {
	h := NewHistogram[uint16](0, 100, bins16bit)
	for _, v := range []uint16{0, 10, 50, 99, 100} {
		h.Add(v)
	}
	require.True(t, h.RangeContainsValues(0, 10))
	require.True(t, h.RangeContainsValues(95, 100))
	require.False(t, h.RangeContainsValues(200, 255))
}

func TestIndexMatchesPrunesOutOfRange(t *testing.T) {
	idx := New()
	for i := 0; i < 50; i++ {
		idx.Update(point.Point{Intensity: uint16(i)})
	}
	require.Equal(t, MayMatch, idx.Matches(Range{Attribute: AttrIntensity, Low: 0, High: 10}))
	require.Equal(t, DefiniteEmpty, idx.Matches(Range{Attribute: AttrIntensity, Low: 200, High: 255}))
}

func TestIndexMergeLiftsChildIntoParent(t *testing.T) {
	child1 := New()
	child1.Update(point.Point{Intensity: 5})
	child2 := New()
	child2.Update(point.Point{Intensity: 500})

	parent := New()
	parent.Merge(child1)
	parent.Merge(child2)

	require.Equal(t, uint16(5), parent.Bounds.MinIntensity)
	require.Equal(t, uint16(500), parent.Bounds.MaxIntensity)
	require.Equal(t, 2, parent.Bounds.Count)
}

func TestRangeMatchingPerPoint(t *testing.T) {
	r := Range{Attribute: AttrClassification, Low: 2, High: 4}
	require.True(t, r.Matching(point.Point{Classification: 3}))
	require.False(t, r.Matching(point.Point{Classification: 9}))
}
