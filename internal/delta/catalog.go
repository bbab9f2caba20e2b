package delta

import (
	"fmt"
	"os"

	"github.com/annel0/battlescape/internal/entity"
	"gopkg.in/yaml.v3"
)

// Catalog - описания оружия и предметов, на которые ссылаются дельты
type Catalog struct {
	Fire  map[string]*entity.FireDef
	Items map[string]*entity.ObjDef
}

type catalogFile struct {
	FireDefs []entity.FireDef `yaml:"fire_defs"`
	Items    []entity.ObjDef  `yaml:"items"`
}

// NewCatalog создаёт пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{
		Fire:  make(map[string]*entity.FireDef),
		Items: make(map[string]*entity.ObjDef),
	}
}

// ParseCatalog разбирает каталог из YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := NewCatalog()
	for i := range f.FireDefs {
		fd := f.FireDefs[i]
		if fd.Name == "" {
			return nil, fmt.Errorf("fire def %d without name", i)
		}
		c.Fire[fd.Name] = &fd
	}
	for i := range f.Items {
		od := f.Items[i]
		if od.ID == "" {
			return nil, fmt.Errorf("item %d without id", i)
		}
		c.Items[od.ID] = &od
	}
	return c, nil
}

// LoadCatalog читает каталог из файла
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// FireDef ищет режим огня; пустое имя - не ошибка
func (c *Catalog) FireDef(name string) (*entity.FireDef, error) {
	fd, ok := c.Fire[name]
	if !ok {
		return nil, &entity.ResourceError{Kind: "fire def", Name: name}
	}
	return fd, nil
}

// Item ищет описание предмета; пустое имя даёт nil
func (c *Catalog) Item(id string) (*entity.ObjDef, error) {
	if id == "" {
		return nil, nil
	}
	od, ok := c.Items[id]
	if !ok {
		return nil, &entity.ResourceError{Kind: "item", Name: id}
	}
	return od, nil
}
