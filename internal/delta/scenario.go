package delta

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Timed - дельта, которую нужно применить в момент At (мс боя)
type Timed struct {
	At    int64 `yaml:"at"`
	Delta `yaml:",inline"`
}

// Scenario - записанная последовательность дельт
type Scenario struct {
	Name   string  `yaml:"name"`
	Deltas []Timed `yaml:"deltas"`
	pos    int
}

// ParseScenario разбирает сценарий из YAML; дельты упорядочиваются по времени
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i, d := range sc.Deltas {
		if d.Kind == "" {
			return nil, fmt.Errorf("scenario %s: delta %d without kind", sc.Name, i)
		}
	}
	sort.SliceStable(sc.Deltas, func(i, j int) bool { return sc.Deltas[i].At < sc.Deltas[j].At })
	return &sc, nil
}

// LoadScenario читает сценарий из файла
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// Due возвращает дельты, время которых наступило к now
func (sc *Scenario) Due(now int64) []Delta {
	var out []Delta
	for sc.pos < len(sc.Deltas) && sc.Deltas[sc.pos].At <= now {
		out = append(out, sc.Deltas[sc.pos].Delta)
		sc.pos++
	}
	return out
}

// Done сообщает, что все дельты выданы
func (sc *Scenario) Done() bool { return sc.pos >= len(sc.Deltas) }
