package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatePointClockwise(t *testing.T) {
	got := RotatePoint(Pt(10, 0), 90, Pt(0, 0))
	assert.InDelta(t, 0, got.X, 1e-9)
	assert.InDelta(t, 10, got.Y, 1e-9)

	got = RotatePoint(Pt(15, 5), 180, Pt(5, 5))
	assert.InDelta(t, -5, got.X, 1e-9)
	assert.InDelta(t, 5, got.Y, 1e-9)
}

func TestRotationAboutMatchesRotatePoint(t *testing.T) {
	o := Pt(3, -7)
	for _, deg := range []float64{-270, -33, 0, 12.5, 90, 181} {
		p := Pt(11, 4)
		want := RotatePoint(p, deg, o)
		got := RotationAbout(deg, o).Apply(p)
		if !got.Near(want, 1e-9) {
			t.Fatalf("deg %v: got %v want %v", deg, got, want)
		}
	}
}

func TestInvertSingularIsIdentity(t *testing.T) {
	inv := Scaling(0, 0).Invert()
	require.Equal(t, Identity(), inv)
	p := inv.Apply(Pt(4, 5))
	assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
}

func TestThenInvertRoundTrip(t *testing.T) {
	tr := Translation(4, -2).Then(RotationAbout(37, Pt(1, 1))).Then(Scaling(2.5, 2.5))
	p := Pt(-12, 33)
	got := tr.Invert().Apply(tr.Apply(p))
	assert.InDelta(t, p.X, got.X, 1e-9)
	assert.InDelta(t, p.Y, got.Y, 1e-9)
}

func stack() (clip, move, rot *Layer) {
	clip = &Layer{Offset: Pt(250, 150)}
	move = &Layer{Parent: clip, Offset: Pt(-150, -40), Scale: 0.8}
	rot = &Layer{Parent: move, Offset: Pt(30, 12), Pivot: Pt(120, 80), Angle: 33}
	return
}

func TestMapPointRoundTrip(t *testing.T) {
	clip, move, rot := stack()
	layers := []*Layer{nil, clip, move, rot}
	points := []Point{{0, 0}, {100, 50}, {-37.5, 812}, {599, 399}}
	for i, a := range layers {
		for j, b := range layers {
			for _, p := range points {
				back := MapPoint(b, a, MapPoint(a, b, p))
				if !back.Near(p, 0.01) {
					t.Fatalf("layers %d->%d: %v came back as %v", i, j, p, back)
				}
			}
		}
	}
}

func TestGlobalToLocalDividesScale(t *testing.T) {
	clip := &Layer{Offset: Pt(100, 100)}
	move := &Layer{Parent: clip, Scale: 2}
	got := GlobalToLocal(move, Pt(140, 160))
	assert.InDelta(t, 20, got.X, 1e-9)
	assert.InDelta(t, 30, got.Y, 1e-9)
	back := LocalToGlobal(move, got)
	assert.InDelta(t, 140, back.X, 1e-9)
	assert.InDelta(t, 160, back.Y, 1e-9)
}

func TestLayerPivotKeepsPivotFixed(t *testing.T) {
	l := &Layer{Offset: Pt(10, 20), Pivot: Pt(50, 40), Angle: 71}
	got := l.Local().Apply(l.Pivot)
	assert.InDelta(t, 60, got.X, 1e-9)
	assert.InDelta(t, 60, got.Y, 1e-9)
}

func TestBoundingBox(t *testing.T) {
	r := BoundingBox(RotationAbout(90, Pt(0, 0)), 600, 400)
	assert.InDelta(t, -400, r.Min.X, 1e-9)
	assert.InDelta(t, 0, r.Min.Y, 1e-9)
	assert.InDelta(t, 400, r.W(), 1e-9)
	assert.InDelta(t, 600, r.H(), 1e-9)

	r = BoundingBox(RotationAbout(45, Pt(0, 0)), 100, 100)
	assert.InDelta(t, 100*math.Sqrt2, r.W(), 1e-9)
	assert.InDelta(t, 100*math.Sqrt2, r.H(), 1e-9)
}
