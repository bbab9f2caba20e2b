package entity

import "github.com/annel0/battlescape/internal/vec"

// DebugRow - строка отладочного списка сущностей
type DebugRow struct {
	Slot       int        `json:"slot"`
	Num        int        `json:"num"`
	Type       string     `json:"type"`
	InUse      bool       `json:"inuse"`
	Invisible  bool       `json:"invis"`
	PlayerNum  int        `json:"pnum"`
	Team       int        `json:"team"`
	FieldSize  int        `json:"size"`
	HP         int        `json:"hp"`
	State      uint32     `json:"state"`
	LevelFlags uint32     `json:"level"`
	Think      string     `json:"think"`
	Pos        vec.Vec3   `json:"pos"`
	Origin     [3]float64 `json:"origin"`
	PathPos    int        `json:"path_pos"`
	PathLength int        `json:"path_len"`
	Model      string     `json:"model"`
}

// ModelRow - строка отладочного списка декоративных моделей
type ModelRow struct {
	Slot        int        `json:"slot"`
	Num         int        `json:"num"`
	Skin        int        `json:"skin"`
	Frame       int        `json:"frame"`
	LevelFlags  uint32     `json:"level"`
	RenderFlags uint32     `json:"render_flags"`
	Origin      [3]float64 `json:"origin"`
	Name        string     `json:"name"`
	InUse       bool       `json:"inuse"`
}

// Snapshot - состояние пулов на момент кадра
type Snapshot struct {
	Session    string     `json:"session"`
	Frame      uint64     `json:"frame"`
	Time       int64      `json:"time"`
	WorldLevel int        `json:"world_level"`
	Entities   []DebugRow `json:"entities"`
	Models     []ModelRow `json:"models"`
	Stats      Stats      `json:"stats"`
	Error      string     `json:"error,omitempty"`
}

// DebugRows перечисляет весь живой диапазон пула, включая свободные слоты
func (s *Simulation) DebugRows() []DebugRow {
	rows := make([]DebugRow, 0, s.pool.Len())
	for i := 0; i < s.pool.Len(); i++ {
		le := s.pool.At(i)
		row := DebugRow{
			Slot:       i,
			Num:        le.Num,
			Type:       le.Type.String(),
			InUse:      le.InUse,
			Invisible:  le.Invisible,
			PlayerNum:  le.PlayerNum,
			Team:       le.Team,
			FieldSize:  int(le.FieldSize),
			HP:         le.HP,
			State:      uint32(le.State),
			LevelFlags: le.LevelFlags,
			Think:      le.think.String(),
			Pos:        le.Pos,
			Origin:     le.Origin,
			PathPos:    le.PathPos,
			PathLength: le.PathLength,
		}
		switch {
		case le.Type == TypeParticle && le.Particle != 0 && le.Fire != nil:
			row.Model = le.Fire.Projectile
		case le.Type == TypeParticle:
			row.Model = "no ptl"
		case le.ModelName != "":
			row.Model = le.ModelName
		default:
			row.Model = "no mdl"
		}
		rows = append(rows, row)
	}
	return rows
}

// ModelRows перечисляет декоративные модели
func (s *Simulation) ModelRows() []ModelRow {
	rows := make([]ModelRow, 0, s.models.Len())
	for i := 0; i < s.models.Len(); i++ {
		lm := s.models.At(i)
		rows = append(rows, ModelRow{
			Slot:        i,
			Num:         lm.Num,
			Skin:        lm.Skin,
			Frame:       lm.Frame,
			LevelFlags:  lm.LevelFlags,
			RenderFlags: uint32(lm.RenderFlags),
			Origin:      lm.Origin,
			Name:        lm.Name,
			InUse:       lm.InUse,
		})
	}
	return rows
}

// Snapshot собирает снимок пулов
func (s *Simulation) Snapshot(session string, frame uint64, cause error) Snapshot {
	snap := Snapshot{
		Session:    session,
		Frame:      frame,
		Time:       s.now,
		WorldLevel: s.level,
		Entities:   s.DebugRows(),
		Models:     s.ModelRows(),
		Stats:      s.Stats(),
	}
	if cause != nil {
		snap.Error = cause.Error()
	}
	return snap
}
