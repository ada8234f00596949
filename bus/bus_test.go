package bus

import (
	"testing"

	"github.com/spatialindex/octree/grid"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	s := b.Subscribe()
	defer s.Close()

	cell := grid.Cell{Lod: 1, X: 2, Y: 3, Z: 4}
	b.Publish(cell)

	select {
	case got := <-s.Changes():
		require.Equal(t, cell, got)
	default:
		t.Fatal("expected a notification")
	}
	require.False(t, s.Stale())
}

func TestOverflowMarksStaleInsteadOfBlocking(t *testing.T) {
	b := New()
	s := b.Subscribe()
	defer s.Close()

	for i := 0; i < defaultCapacity+10; i++ {
		b.Publish(grid.Cell{Lod: 0, X: int32(i)})
	}
	require.True(t, s.Stale())
	require.False(t, s.Stale(), "Stale() clears the flag once observed")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	s := b.Subscribe()
	b.Unsubscribe(s)
	b.Publish(grid.Cell{Lod: 0})
	select {
	case <-s.Changes():
		t.Fatal("unsubscribed subscriber should not receive notifications")
	default:
	}
}
