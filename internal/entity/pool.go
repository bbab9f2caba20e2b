package entity

import (
	"github.com/annel0/battlescape/internal/vec"
)

// Pool - пул локальных сущностей фиксированной ёмкости.
// Указатели на записи стабильны до Reset.
type Pool struct {
	slots []LocalEntity
	num   int // живой диапазон
	seq   uint64
}

// NewPool создаёт пул на capacity записей
func NewPool(capacity int) *Pool {
	return &Pool{slots: make([]LocalEntity, capacity)}
}

// Cap возвращает ёмкость
func (p *Pool) Cap() int { return len(p.slots) }

// Len возвращает размер живого диапазона
func (p *Pool) Len() int { return p.num }

// At возвращает слот i живого диапазона
func (p *Pool) At(i int) *LocalEntity { return &p.slots[i] }

// Allocate занимает первый свободный слот или расширяет живой диапазон
func (p *Pool) Allocate(num int) (*LocalEntity, error) {
	i := 0
	for ; i < p.num; i++ {
		if !p.slots[i].InUse {
			break
		}
	}
	if i == p.num {
		if p.num >= len(p.slots) {
			return nil, &CapacityError{Pool: "local entity", Limit: len(p.slots)}
		}
		p.num++
	}

	p.seq++
	le := &p.slots[i]
	*le = LocalEntity{
		InUse:     true,
		Num:       num,
		slot:      i,
		seq:       p.seq,
		FieldSize: defaultFieldSize,
	}
	return le, nil
}

// Lookup ищет последнюю выделенную живую сущность с номером num
func (p *Pool) Lookup(num int) (*LocalEntity, bool) {
	if num == SkipLocalEntity {
		return nil, false
	}
	var found *LocalEntity
	for i := 0; i < p.num; i++ {
		le := &p.slots[i]
		if le.InUse && le.Num == num && (found == nil || le.seq > found.seq) {
			found = le
		}
	}
	return found, found != nil
}

// Resolve разыменовывает ссылку; устаревшая ссылка даёт false
func (p *Pool) Resolve(h Handle) (*LocalEntity, bool) {
	if !h.Valid() || int(h.slot) > p.num {
		return nil, false
	}
	le := &p.slots[h.slot-1]
	if !le.InUse || le.Num != int(h.num) {
		return nil, false
	}
	return le, true
}

// Find ищет живую сущность вида t в клетке pos
func (p *Pool) Find(t Type, pos vec.Vec3) (*LocalEntity, bool) {
	for i := 0; i < p.num; i++ {
		le := &p.slots[i]
		if le.InUse && le.Type == t && le.Pos == pos {
			return le, true
		}
	}
	return nil, false
}

// Free освобождает слот
func (p *Pool) Free(le *LocalEntity) {
	*le = LocalEntity{slot: le.slot}
}

// Cleanup освобождает инвентари живых сущностей, обходя пул с конца
func (p *Pool) Cleanup() {
	for i := p.num - 1; i >= 0; i-- {
		le := &p.slots[i]
		if !le.InUse {
			continue
		}
		switch le.Type {
		case TypeActor, TypeActor2x2:
			le.Right = nil
			le.Left = nil
			le.Floor = nil
		case TypeItem:
			le.Floor.Empty()
		}
	}
}

// InUse возвращает число занятых слотов
func (p *Pool) InUse() int {
	n := 0
	for i := 0; i < p.num; i++ {
		if p.slots[i].InUse {
			n++
		}
	}
	return n
}

// Reset очищает пул при смене уровня
func (p *Pool) Reset() {
	for i := range p.slots[:p.num] {
		p.slots[i] = LocalEntity{}
	}
	p.num = 0
}
