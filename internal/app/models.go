package app

import "sync"

// ModelTable выдаёт индексы моделям в порядке первого обращения, как
// прекэш рендерера. Клиенту без вывода изображения достаточно имён.
type ModelTable struct {
	mu      sync.Mutex
	indices map[string]int
	broken  map[string]bool
}

// NewModelTable создаёт таблицу; broken - модели, которые не грузятся
func NewModelTable(broken ...string) *ModelTable {
	t := &ModelTable{indices: make(map[string]int), broken: make(map[string]bool)}
	for _, name := range broken {
		t.broken[name] = true
	}
	return t
}

// Model реализует entity.ModelRegistry
func (t *ModelTable) Model(name string) (int, bool) {
	if name == "" || t.broken[name] {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, ok := t.indices[name]
	if !ok {
		idx = len(t.indices) + 1
		t.indices[name] = idx
	}
	return idx, true
}

// HasAnim реализует entity.ModelRegistry; анимации не проверяются
func (t *ModelTable) HasAnim(int, string) bool { return true }

// Len возвращает число загруженных моделей
func (t *ModelTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.indices)
}
