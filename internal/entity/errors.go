package entity

import (
	"errors"
	"fmt"

	"github.com/annel0/battlescape/internal/vec"
)

var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrDesync           = errors.New("client state desync")
	ErrMissingResource  = errors.New("missing resource")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// CapacityError - пул переполнен
type CapacityError struct {
	Pool  string
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s pool full (%d)", e.Pool, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// DesyncError - локальное состояние разошлось с сервером
type DesyncError struct {
	Num      int
	Team     int
	Pos      vec.Vec3
	Expected vec.Vec3
	Step     int
	Length   int
	Reason   string
}

func (e *DesyncError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("entity %d: %s", e.Num, e.Reason)
	}
	return fmt.Sprintf("entity %d (team %d) ended at %s instead of %s (step %d of %d)",
		e.Num, e.Team, e.Pos, e.Expected, e.Step, e.Length)
}

func (e *DesyncError) Unwrap() error { return ErrDesync }

// ResourceError - не найдена модель, звук или частица
type ResourceError struct {
	Kind string
	Name string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *ResourceError) Unwrap() error { return ErrMissingResource }

// IsFatal сообщает, что ошибка должна остановить кадр
func IsFatal(err error) bool {
	return errors.Is(err, ErrDesync) || errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrMissingResource)
}
