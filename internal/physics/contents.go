// Package physics реализует трассировку движущихся коробок (swept AABB)
// против статического мира и хуллов сущностей.
package physics

// Contents - битовая маска содержимого объёма
type Contents uint32

const (
	ContentsSolid     Contents = 1 << 0
	ContentsWindow    Contents = 1 << 1
	ContentsWater     Contents = 1 << 5
	ContentsActorClip Contents = 1 << 16
	ContentsActor     Contents = 1 << 25
	ContentsDeadActor Contents = 1 << 26
	ContentsDetail    Contents = 1 << 27
)

const (
	MaskSolid = ContentsSolid | ContentsWindow
	MaskShot  = ContentsSolid | ContentsActor | ContentsWindow | ContentsDeadActor
	MaskAll   = ^Contents(0)
)

// Has сообщает, пересекается ли маска с другой
func (c Contents) Has(other Contents) bool {
	return c&other != 0
}
