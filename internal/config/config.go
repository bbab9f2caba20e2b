package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/battlescape/internal/entity"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации клиента боя.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Debug      DebugConfig      `yaml:"debug"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Storage    StorageConfig    `yaml:"storage"`
	Audio      AudioConfig      `yaml:"audio"`
	Data       DataConfig       `yaml:"data"`
}

type SimulationConfig struct {
	MaxEntities    int        `yaml:"max_entities"`
	MaxLocalModels int        `yaml:"max_local_models"`
	FallMsPerUnit  float64    `yaml:"fall_ms_per_unit"`
	MapMin         [3]float64 `yaml:"map_min"`
	MapMax         [3]float64 `yaml:"map_max"`
	ShowInvisible  bool       `yaml:"show_invisible"`
	FrameRate      int        `yaml:"frame_rate"`
	Seed           int64      `yaml:"seed"`
	WorldLevel     int        `yaml:"world_level"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
	Dir    string `yaml:"dir"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто - шина в памяти
	Stream    string `yaml:"stream"`
	Session   string `yaml:"session"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type DebugConfig struct {
	Addr string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type AudioConfig struct {
	Enabled   bool   `yaml:"enabled"`
	SampleDir string `yaml:"sample_dir"`
}

// DataConfig - файлы данных боя
type DataConfig struct {
	Terrain  string `yaml:"terrain"`
	Catalog  string `yaml:"catalog"`
	Scenario string `yaml:"scenario"`
}

// Entity переводит раздел simulation в параметры симуляции
func (s SimulationConfig) Entity() entity.Config {
	cfg := entity.DefaultConfig()
	if s.MaxEntities > 0 {
		cfg.MaxEntities = s.MaxEntities
	}
	if s.MaxLocalModels > 0 {
		cfg.MaxLocalModels = s.MaxLocalModels
	}
	if s.FallMsPerUnit > 0 {
		cfg.FallMillisPerUnit = s.FallMsPerUnit
	}
	if s.MapMin != s.MapMax {
		cfg.MapMin = mgl64.Vec3(s.MapMin)
		cfg.MapMax = mgl64.Vec3(s.MapMax)
	}
	cfg.ShowInvisible = s.ShowInvisible
	cfg.Seed = s.Seed
	return cfg
}

// FrameInterval возвращает период кадра (по умолчанию 60 кадров в секунду)
func (s SimulationConfig) FrameInterval() time.Duration {
	rate := s.FrameRate
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// GetAddr возвращает адрес отладочного API; пусто - API выключен
func (d *DebugConfig) GetAddr() string {
	return getStringWithEnvFallback(d.Addr, "BATTLESCAPE_DEBUG_ADDR", "")
}

// GetURL возвращает адрес NATS
func (e *EventBusConfig) GetURL() string {
	return getStringWithEnvFallback(e.URL, "BATTLESCAPE_NATS_URL", "")
}

// GetRetention возвращает срок хранения событий в стриме
func (e *EventBusConfig) GetRetention() time.Duration {
	return time.Duration(getIntWithEnvFallback(e.Retention, "BATTLESCAPE_NATS_RETENTION_HOURS", 24)) * time.Hour
}

// GetBuffer возвращает ёмкость очередей шины и дельт
func (e *EventBusConfig) GetBuffer() int {
	return getIntWithEnvFallback(e.Buffer, "BATTLESCAPE_BUS_BUFFER", 1024)
}

// GetPath возвращает каталог снимков; пусто - снимки в памяти
func (s *StorageConfig) GetPath() string {
	return getStringWithEnvFallback(s.Path, "BATTLESCAPE_DATA_DIR", "")
}

// GetLevel возвращает уровень журнала
func (l *LoggingConfig) GetLevel() string {
	return getStringWithEnvFallback(l.Level, "LOG_LEVEL", "INFO")
}

// GetFormat возвращает формат журнала
func (l *LoggingConfig) GetFormat() string {
	return getStringWithEnvFallback(l.Format, "LOG_FORMAT", "text")
}

// getIntWithEnvFallback: config -> env -> default
func getIntWithEnvFallback(value int, envVar string, def int) int {
	if value > 0 {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// getStringWithEnvFallback: config -> env -> default
func getStringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}

// Load читает YAML файл конфигурации.
// Если path == "", берёт путь из BATTLESCAPE_CONFIG; без него возвращает пустой конфиг.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("BATTLESCAPE_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
