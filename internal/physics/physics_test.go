package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitHull = Hull{
	Mins:     mgl64.Vec3{-10, -10, -10},
	Maxs:     mgl64.Vec3{10, 10, 10},
	Surface:  "tex/concrete",
	Contents: ContentsSolid,
}

func TestClipBoxHit(t *testing.T) {
	tr := ClipBox(mgl64.Vec3{-50, 0, 0}, mgl64.Vec3{50, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}, unitHull)

	require.Less(t, tr.Fraction, 1.0)
	assert.InDelta(t, 0.4, tr.Fraction, 0.001)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, tr.Plane.Normal)
	assert.Equal(t, "tex/concrete", tr.Surface)
	assert.False(t, tr.StartSolid)
	assert.InDelta(t, -10, tr.EndPos.X(), 0.1)
}

func TestClipBoxExpandsByMovingBox(t *testing.T) {
	mins := mgl64.Vec3{-5, -5, -5}
	maxs := mgl64.Vec3{5, 5, 5}
	tr := ClipBox(mgl64.Vec3{-50, 0, 0}, mgl64.Vec3{50, 0, 0}, mins, maxs, unitHull)
	assert.InDelta(t, 0.35, tr.Fraction, 0.001)
}

func TestClipBoxMiss(t *testing.T) {
	tr := ClipBox(mgl64.Vec3{-50, 30, 0}, mgl64.Vec3{50, 30, 0}, mgl64.Vec3{}, mgl64.Vec3{}, unitHull)
	assert.Equal(t, 1.0, tr.Fraction)
	assert.Equal(t, mgl64.Vec3{50, 30, 0}, tr.EndPos)
}

func TestClipBoxSolid(t *testing.T) {
	t.Run("старт внутри, выход наружу", func(t *testing.T) {
		tr := ClipBox(mgl64.Vec3{}, mgl64.Vec3{50, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}, unitHull)
		assert.True(t, tr.StartSolid)
		assert.False(t, tr.AllSolid)
		assert.Equal(t, 1.0, tr.Fraction)
	})

	t.Run("весь путь внутри", func(t *testing.T) {
		tr := ClipBox(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}, unitHull)
		assert.True(t, tr.StartSolid)
		assert.True(t, tr.AllSolid)
		assert.Equal(t, 0.0, tr.Fraction)
	})
}

func TestTransformedClip(t *testing.T) {
	t.Run("смещение", func(t *testing.T) {
		origin := mgl64.Vec3{100, 0, 0}
		tr := TransformedClip(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{200, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{}, unitHull, origin, mgl64.Vec3{})
		assert.InDelta(t, 0.45, tr.Fraction, 0.001)
		assert.InDelta(t, 90, tr.EndPos.X(), 0.1)
		assert.InDelta(t, -90, tr.Plane.Dist, 0.001)
	})

	t.Run("поворот", func(t *testing.T) {
		long := Hull{Mins: mgl64.Vec3{-40, -5, -5}, Maxs: mgl64.Vec3{40, 5, 5}, Contents: ContentsSolid}
		// без поворота луч вдоль Y проходит сквозь узкую сторону на x=30
		start, end := mgl64.Vec3{30, -100, 0}, mgl64.Vec3{30, 100, 0}
		straight := TransformedClip(start, end, mgl64.Vec3{}, mgl64.Vec3{}, long, mgl64.Vec3{}, mgl64.Vec3{})
		assert.Less(t, straight.Fraction, 1.0)

		turned := TransformedClip(start, end, mgl64.Vec3{}, mgl64.Vec3{}, long, mgl64.Vec3{}, mgl64.Vec3{0, 90, 0})
		assert.Equal(t, 1.0, turned.Fraction)
	})
}

func TestHullBoundsCoverRotatedCorners(t *testing.T) {
	door := Hull{Mins: mgl64.Vec3{-100, 0, 0}, Maxs: mgl64.Vec3{0, 100, 10}, Contents: ContentsSolid}
	origin := mgl64.Vec3{8, -8, 0}

	mins, maxs := door.Bounds(origin, mgl64.Vec3{})
	assert.Equal(t, origin.Add(door.Mins), mins)
	assert.Equal(t, origin.Add(door.Maxs), maxs)

	for yaw := 0.0; yaw < 360; yaw += 15 {
		angles := mgl64.Vec3{0, yaw, 0}
		mins, maxs := door.Bounds(origin, angles)
		rot := RotationMatrix(angles)
		for i := 0; i < 8; i++ {
			corner := door.Mins
			for axis := 0; axis < 3; axis++ {
				if i&(1<<axis) != 0 {
					corner[axis] = door.Maxs[axis]
				}
			}
			p := origin.Add(rot.Mul3x1(corner))
			for axis := 0; axis < 3; axis++ {
				assert.GreaterOrEqual(t, p[axis], mins[axis]-1e-9, "yaw %v угол %d", yaw, i)
				assert.LessOrEqual(t, p[axis], maxs[axis]+1e-9, "yaw %v угол %d", yaw, i)
			}
		}
	}
}

func TestMerge(t *testing.T) {
	t.Run("меньшая доля заменяет и сохраняет startsolid", func(t *testing.T) {
		running := Trace{Fraction: 0.8, StartSolid: true}
		out := Merge(&running, Trace{Fraction: 0.3, Surface: "b"})
		assert.Equal(t, MergeReplaced, out)
		assert.Equal(t, 0.3, running.Fraction)
		assert.Equal(t, "b", running.Surface)
		assert.True(t, running.StartSolid)
	})

	t.Run("allsolid заменяет всегда", func(t *testing.T) {
		running := Trace{Fraction: 0}
		out := Merge(&running, Trace{Fraction: 0, AllSolid: true, StartSolid: true})
		assert.Equal(t, MergeReplaced, out)
		assert.True(t, running.AllSolid)
	})

	t.Run("startsolid переносит только флаг", func(t *testing.T) {
		running := Trace{Fraction: 0.2, Surface: "a"}
		out := Merge(&running, Trace{Fraction: 1, StartSolid: true})
		assert.Equal(t, MergeStartSolid, out)
		assert.Equal(t, 0.2, running.Fraction)
		assert.Equal(t, "a", running.Surface)
		assert.True(t, running.StartSolid)
	})

	t.Run("дальше текущего игнорируется", func(t *testing.T) {
		running := Trace{Fraction: 0.2}
		assert.Equal(t, MergeKept, Merge(&running, Trace{Fraction: 0.5}))
		assert.Equal(t, 0.2, running.Fraction)
	})
}

func TestTraceBounds(t *testing.T) {
	mins, maxs := TraceBounds(mgl64.Vec3{10, 0, 5}, mgl64.Vec3{-2, -2, -2}, mgl64.Vec3{2, 2, 2}, mgl64.Vec3{0, 20, 5})
	assert.Equal(t, mgl64.Vec3{-3, -3, 2}, mins)
	assert.Equal(t, mgl64.Vec3{13, 23, 8}, maxs)
	assert.True(t, BoxesOverlap(mins, maxs, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 10}))
	assert.False(t, BoxesOverlap(mins, maxs, mgl64.Vec3{100, 0, 0}, mgl64.Vec3{101, 1, 1}))
}

func TestBoxWorld(t *testing.T) {
	floor := Brush{Hull: Hull{Mins: mgl64.Vec3{-100, -100, -10}, Maxs: mgl64.Vec3{100, 100, 0}, Surface: "grass", Contents: ContentsSolid}, Level: 0}
	roof := Brush{Hull: Hull{Mins: mgl64.Vec3{-100, -100, 64}, Maxs: mgl64.Vec3{100, 100, 70}, Surface: "roof", Contents: ContentsSolid}, Level: 1}
	w := NewBoxWorld(floor, roof)

	down := w.BoxTrace(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, -50}, mgl64.Vec3{}, mgl64.Vec3{}, 0x3, MaskSolid)
	assert.Equal(t, "roof", down.Surface)

	// верхний уровень скрыт
	down = w.BoxTrace(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, -50}, mgl64.Vec3{}, mgl64.Vec3{}, 0x1, MaskSolid)
	assert.Equal(t, "grass", down.Surface)

	// содержимое не совпадает с маской
	down = w.BoxTrace(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, -50}, mgl64.Vec3{}, mgl64.Vec3{}, 0x3, ContentsWater)
	assert.Equal(t, 1.0, down.Fraction)
}

func TestVecToAngles(t *testing.T) {
	assert.InDelta(t, 90, VecToAngles(mgl64.Vec3{0, 5, 0}).Y(), 1e-9)
	assert.InDelta(t, -90, VecToAngles(mgl64.Vec3{0, 0, 1}).X(), 1e-9)
	assert.InDelta(t, 180, VecToAngles(mgl64.Vec3{-1, 0, 0}).Y(), 1e-9)
}

func TestHullRegistry(t *testing.T) {
	r := NewHullRegistry()
	r.Register(3, unitHull)
	h, ok := r.Hull(3)
	require.True(t, ok)
	assert.Equal(t, unitHull, h)
	_, ok = r.Hull(4)
	assert.False(t, ok)
}
