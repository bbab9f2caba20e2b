// Package terrain хранит описания поверхностей: частицы и звуки шагов
// по имени текстуры.
package terrain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type - свойства поверхности
type Type struct {
	Texture        string  `yaml:"texture"`
	Particle       string  `yaml:"particle"`
	FootstepSound  string  `yaml:"footstep_sound"`
	FootstepVolume float64 `yaml:"footstep_volume"`
}

// Table - таблица поверхностей по базовому имени текстуры
type Table struct {
	types map[string]Type
}

// NewTable строит таблицу из набора описаний
func NewTable(types ...Type) *Table {
	t := &Table{types: make(map[string]Type, len(types))}
	for _, tt := range types {
		t.types[tt.Texture] = tt
	}
	return t
}

type file struct {
	Terrain []Type `yaml:"terrain"`
}

// Parse читает таблицу из YAML
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	for i, tt := range f.Terrain {
		if tt.Texture == "" {
			return nil, fmt.Errorf("terrain: запись %d без texture", i)
		}
	}
	return NewTable(f.Terrain...), nil
}

// Load читает таблицу из файла
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	return Parse(data)
}

// Lookup ищет поверхность по имени текстуры; путь до последнего '/' отбрасывается
func (t *Table) Lookup(texture string) (Type, bool) {
	if t == nil {
		return Type{}, false
	}
	if i := strings.LastIndexByte(texture, '/'); i >= 0 {
		texture = texture[i+1:]
	}
	tt, ok := t.types[texture]
	return tt, ok
}

// Len возвращает число записей
func (t *Table) Len() int { return len(t.types) }
