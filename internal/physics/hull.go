package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// distEpsilon удерживает конечную точку чуть перед плоскостью
const distEpsilon = 0.03125

// Hull - выпуклый коллизионный объём в локальных координатах
type Hull struct {
	Mins     mgl64.Vec3 `yaml:"mins"`
	Maxs     mgl64.Vec3 `yaml:"maxs"`
	Surface  string     `yaml:"surface"`
	Contents Contents   `yaml:"contents"`
}

// ClipBox проводит коробку mins/maxs от start к end против хулла
func ClipBox(start, end, mins, maxs mgl64.Vec3, hull Hull) Trace {
	tr := EmptyTrace(end)

	// расширяем хулл на размер движущейся коробки и ведём точку
	emin := hull.Mins.Sub(maxs)
	emax := hull.Maxs.Sub(mins)

	enterFrac, leaveFrac := -1.0, 1.0
	var clipPlane Plane
	startOut, getOut := false, false

	for axis := 0; axis < 3; axis++ {
		for _, side := range [2]float64{-1, 1} {
			var d1, d2 float64
			plane := Plane{}
			plane.Normal[axis] = side
			if side > 0 {
				plane.Dist = emax[axis]
				d1 = start[axis] - emax[axis]
				d2 = end[axis] - emax[axis]
			} else {
				plane.Dist = -emin[axis]
				d1 = emin[axis] - start[axis]
				d2 = emin[axis] - end[axis]
			}

			if d2 > 0 {
				getOut = true
			}
			if d1 > 0 {
				startOut = true
			}

			if d1 > 0 && d2 >= d1 {
				return tr
			}
			if d1 <= 0 && d2 <= 0 {
				continue
			}

			if d1 > d2 {
				f := (d1 - distEpsilon) / (d1 - d2)
				if f > enterFrac {
					enterFrac = f
					clipPlane = plane
				}
			} else {
				f := (d1 + distEpsilon) / (d1 - d2)
				if f < leaveFrac {
					leaveFrac = f
				}
			}
		}
	}

	if !startOut {
		tr.StartSolid = true
		tr.Contents = hull.Contents
		if !getOut {
			tr.AllSolid = true
			tr.Fraction = 0
			tr.EndPos = start
		}
		return tr
	}

	if enterFrac < leaveFrac && enterFrac > -1 && enterFrac < tr.Fraction {
		if enterFrac < 0 {
			enterFrac = 0
		}
		tr.Fraction = enterFrac
		tr.Plane = clipPlane
		tr.Surface = hull.Surface
		tr.Contents = hull.Contents
		tr.EndPos = lerp(start, end, enterFrac)
	}
	return tr
}

// TransformedClip проводит коробку против хулла, размещённого в origin
// с поворотом angles (pitch, yaw, roll в градусах)
func TransformedClip(start, end, mins, maxs mgl64.Vec3, hull Hull, origin, angles mgl64.Vec3) Trace {
	localStart := start.Sub(origin)
	localEnd := end.Sub(origin)

	rotated := angles != (mgl64.Vec3{})
	var rot mgl64.Mat3
	if rotated {
		rot = RotationMatrix(angles)
		inv := rot.Transpose()
		localStart = inv.Mul3x1(localStart)
		localEnd = inv.Mul3x1(localEnd)
		// коробку не вращаем, а заменяем описанным кубом
		if mins != maxs {
			half := 0.0
			for i := 0; i < 3; i++ {
				half = math.Max(half, math.Max(math.Abs(mins[i]), math.Abs(maxs[i])))
			}
			mins = mgl64.Vec3{-half, -half, -half}
			maxs = mgl64.Vec3{half, half, half}
		}
	}

	tr := ClipBox(localStart, localEnd, mins, maxs, hull)
	if rotated && tr.Fraction != 1 {
		tr.Plane.Normal = rot.Mul3x1(tr.Plane.Normal)
	}
	if tr.Fraction != 1 {
		tr.Plane.Dist += tr.Plane.Normal.Dot(origin)
	}
	tr.EndPos = lerp(start, end, tr.Fraction)
	return tr
}

// Bounds возвращает мировые габариты хулла
func (h Hull) Bounds(origin, angles mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	if angles == (mgl64.Vec3{}) {
		return origin.Add(h.Mins), origin.Add(h.Maxs)
	}
	// радиус до самого дальнего угла: поворот не выводит хулл за сферу
	var far mgl64.Vec3
	for i := 0; i < 3; i++ {
		far[i] = math.Max(math.Abs(h.Mins[i]), math.Abs(h.Maxs[i]))
	}
	r := far.Len()
	ext := mgl64.Vec3{r, r, r}
	return origin.Sub(ext), origin.Add(ext)
}

func lerp(a, b mgl64.Vec3, f float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(f))
}
