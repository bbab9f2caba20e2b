package vec

import "fmt"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Для тактической сетки: X, Y - клетка, Z - уровень (этаж).
type Vec3 struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// String возвращает позицию в формате x:y:z (как в диагностике рассинхронизации)
func (v Vec3) String() string {
	return fmt.Sprintf("%d:%d:%d", v.X, v.Y, v.Z)
}
