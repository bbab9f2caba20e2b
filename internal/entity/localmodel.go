package entity

import (
	"fmt"

	"github.com/annel0/battlescape/internal/logging"
	"github.com/go-gl/mathgl/mgl64"
)

// LocalModel - декоративная модель уровня без поведения и коллизий
type LocalModel struct {
	InUse       bool
	Num         int
	Name        string
	Particle    string
	ModelIndex  int
	Origin      mgl64.Vec3
	Angles      mgl64.Vec3
	Scale       mgl64.Vec3
	Anim        string
	Skin        int
	Frame       int
	LevelFlags  uint32
	RenderFlags RenderFlags
}

// LocalModels - пул декоративных моделей
type LocalModels struct {
	models []LocalModel
	num    int
}

// NewLocalModels создаёт пул на capacity моделей
func NewLocalModels(capacity int) *LocalModels {
	return &LocalModels{models: make([]LocalModel, capacity)}
}

// Len возвращает число добавленных моделей
func (m *LocalModels) Len() int { return m.num }

// At возвращает модель i
func (m *LocalModels) At(i int) *LocalModel { return &m.models[i] }

// Add добавляет модель; повтор номера - рассинхронизация
func (m *LocalModels) Add(lm LocalModel) (*LocalModel, error) {
	if m.num >= len(m.models) {
		return nil, &CapacityError{Pool: "local model", Limit: len(m.models)}
	}
	if lm.Num != 0 {
		if _, dup := m.Find(lm.Num); dup {
			return nil, &DesyncError{Num: lm.Num, Reason: fmt.Sprintf("local model %s already added", lm.Name)}
		}
	}
	lm.InUse = true
	m.models[m.num] = lm
	m.num++
	return &m.models[m.num-1], nil
}

// Find ищет модель по номеру
func (m *LocalModels) Find(num int) (*LocalModel, bool) {
	for i := 0; i < m.num; i++ {
		if m.models[i].Num == num {
			return &m.models[i], true
		}
	}
	return nil, false
}

// Register связывает модели с реестром. Модель без ресурса отключается.
func (m *LocalModels) Register(reg ModelRegistry, log *logging.Logger) {
	for i := 0; i < m.num; i++ {
		lm := &m.models[i]
		if reg == nil {
			lm.InUse = false
			continue
		}
		idx, ok := reg.Model(lm.Name)
		if !ok {
			log.Warn("модель %s не найдена, LM %d отключена", lm.Name, lm.Num)
			lm.InUse = false
			continue
		}
		lm.ModelIndex = idx
		if lm.Anim != "" && !reg.HasAnim(idx, lm.Anim) {
			log.Warn("не удалось сменить анимацию LM %d на %s", lm.Num, lm.Anim)
		}
	}
}

// Reset очищает пул
func (m *LocalModels) Reset() {
	for i := range m.models[:m.num] {
		m.models[i] = LocalModel{}
	}
	m.num = 0
}

// AddLocalModel добавляет декоративную модель в симуляцию
func (s *Simulation) AddLocalModel(lm LocalModel) (*LocalModel, error) {
	added, err := s.models.Add(lm)
	if err != nil {
		s.log.Error("LM %d (%s): %v", lm.Num, lm.Name, err)
	}
	return added, err
}

// RegisterLocalModels связывает декоративные модели с реестром моделей
func (s *Simulation) RegisterLocalModels() {
	s.models.Register(s.deps.Models, s.log)
}
