package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeTierBuckets(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 1.0},
		{5, 1.0},
		{6, 0.8},
		{10, 0.8},
		{20, 0.6},
		{21, 0.4},
		{50, 0.4},
		{51, 0.2},
		{500, 0.2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SizeTier(tt.count), "SizeTier(%d)", tt.count)
	}
}

func TestNodeSizeInterpolation(t *testing.T) {
	large := NodeSizeFor(3)
	assert.Equal(t, 80.0, large.NodeSize)
	assert.Equal(t, 16.0, large.LabelSize)
	assert.Equal(t, 100.0, large.CollisionRadius)
	assert.Equal(t, 16.0, large.FontSize)

	small := NodeSizeFor(100)
	assert.Equal(t, 32.0, small.NodeSize)
	assert.Equal(t, 13.0, small.LabelSize)
	assert.Equal(t, 44.0, small.CollisionRadius)
	assert.Equal(t, 11.0, small.FontSize)
}

func TestForcesScaleWithNodeSize(t *testing.T) {
	f := ForcesFor(5)
	assert.Equal(t, 80.0, f.NodeVisualSize)
	assert.Equal(t, LinkDistance{Min: 160, Max: 320, Base: 240}, f.LinkDistance)
	assert.Equal(t, -300.0, f.ChargeStrength)
	assert.Equal(t, 480.0, f.ChargeDistanceMax)

	f = ForcesFor(60)
	assert.Equal(t, LinkDistance{Min: 80, Max: 200, Base: 150}, f.LinkDistance)
	assert.Equal(t, -500.0, f.ChargeStrength)
	assert.Equal(t, 400.0, f.ChargeDistanceMax)
}

func TestChargeStrengthClamp(t *testing.T) {
	for n := 0; n <= 20; n++ {
		assert.Equal(t, -300.0, ForcesFor(n).ChargeStrength, "n=%d", n)
	}
	assert.Equal(t, -305.0, ForcesFor(21).ChargeStrength)
}

func TestDeterministic(t *testing.T) {
	c := Default()
	for n := 0; n < 80; n++ {
		assert.Equal(t, c.Forces(n), c.Forces(n))
		assert.Equal(t, c.NodeSize(n).CollisionRadius, c.Forces(n).CollisionRadius)
	}
}

func TestLinkDistanceClamp(t *testing.T) {
	d := LinkDistance{Min: 80, Max: 200, Base: 150}
	assert.Equal(t, 150.0, d.Clamp(0, 50))
	assert.Equal(t, 100.0, d.Clamp(1, 50))
	assert.Equal(t, 80.0, d.Clamp(10, 50))
	assert.Equal(t, 200.0, d.Clamp(-10, 50))
}

func TestCustomBounds(t *testing.T) {
	b := DefaultBounds()
	b.MaxSize = 40
	c := New(b)
	assert.Equal(t, 40.0, c.NodeSize(1).NodeSize)
	assert.Equal(t, b, c.Bounds())
}

func TestViewportAndVisibility(t *testing.T) {
	assert.Equal(t, Viewport{800, 600}, ViewportFor(10))
	assert.Equal(t, Viewport{1200, 800}, ViewportFor(30))
	assert.Equal(t, Viewport{1600, 1000}, ViewportFor(31))
	assert.True(t, ShowLabels(30))
	assert.False(t, ShowLabels(31))
	assert.True(t, ShowEdges(100))
	assert.False(t, ShowEdges(101))
}
