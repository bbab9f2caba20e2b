package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// WorldTracer - статическая геометрия карты
type WorldTracer interface {
	// BoxTrace проводит коробку против мира; levelMask - видимые уровни
	BoxTrace(start, end, mins, maxs mgl64.Vec3, levelMask uint32, mask Contents) Trace
}

// HullProvider выдаёт заранее подготовленный хулл по индексу модели
type HullProvider interface {
	Hull(modelIndex int) (Hull, bool)
}

// Brush - кусок статического мира на своём уровне
type Brush struct {
	Hull  `yaml:",inline"`
	Level int `yaml:"level"`
}

// BoxWorld - мир из выровненных по осям коробок
type BoxWorld struct {
	brushes []Brush
}

// NewBoxWorld создаёт мир из набора коробок
func NewBoxWorld(brushes ...Brush) *BoxWorld {
	return &BoxWorld{brushes: brushes}
}

// Add добавляет коробку
func (w *BoxWorld) Add(b Brush) {
	w.brushes = append(w.brushes, b)
}

// BoxTrace реализует WorldTracer
func (w *BoxWorld) BoxTrace(start, end, mins, maxs mgl64.Vec3, levelMask uint32, mask Contents) Trace {
	best := EmptyTrace(end)
	for _, b := range w.brushes {
		if !b.Contents.Has(mask) || levelMask&(1<<uint(b.Level)) == 0 {
			continue
		}
		Merge(&best, ClipBox(start, end, mins, maxs, b.Hull))
		if best.AllSolid {
			break
		}
	}
	return best
}

// HullRegistry - потокобезопасный реестр хуллов по индексу модели
type HullRegistry struct {
	mu    sync.RWMutex
	hulls map[int]Hull
}

// NewHullRegistry создаёт пустой реестр
func NewHullRegistry() *HullRegistry {
	return &HullRegistry{hulls: make(map[int]Hull)}
}

// Register сохраняет хулл
func (r *HullRegistry) Register(modelIndex int, h Hull) {
	r.mu.Lock()
	r.hulls[modelIndex] = h
	r.mu.Unlock()
}

// Hull реализует HullProvider
func (r *HullRegistry) Hull(modelIndex int) (Hull, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hulls[modelIndex]
	return h, ok
}
