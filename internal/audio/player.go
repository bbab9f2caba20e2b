// Package audio проигрывает звуки боя через beep: загрузка сэмплов с диска,
// громкость и затухание по расстоянию до слушателя.
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/annel0/battlescape/internal/effects"
	"github.com/annel0/battlescape/internal/logging"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	beffects "github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

const (
	// DefaultSampleRate - частота микшера
	DefaultSampleRate = beep.SampleRate(44100)
	// DefaultMaxDistance - расстояние, на котором звук с затуханием 1 стихает
	DefaultMaxDistance = 1024.0
)

// Расширения в порядке поиска
var extensions = []string{".ogg", ".wav"}

// Options - параметры проигрывателя
type Options struct {
	Dir         string
	SampleRate  beep.SampleRate
	MaxDistance float64
	Logger      *logging.Logger
}

// Sample - декодированный в память сэмпл
type Sample struct {
	name string
	buf  *beep.Buffer
}

// Name реализует effects.Sample
func (s *Sample) Name() string { return s.name }

// Len возвращает длину сэмпла в кадрах
func (s *Sample) Len() int { return s.buf.Len() }

// Player загружает и проигрывает сэмплы. Реализует effects.Sounds.
type Player struct {
	mu       sync.Mutex
	opts     Options
	cache    map[string]*Sample
	missing  map[string]bool
	mixer    *beep.Mixer
	listener mgl64.Vec3
	started  bool
	log      *logging.Logger
}

// NewPlayer создаёт проигрыватель; звук не выводится до Start
func NewPlayer(opts Options) *Player {
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultMaxDistance
	}
	log := opts.Logger
	if log == nil {
		log = logging.GetComponentLogger("audio")
	}
	return &Player{
		opts:    opts,
		cache:   make(map[string]*Sample),
		missing: make(map[string]bool),
		mixer:   &beep.Mixer{},
		log:     log,
	}
}

// Start открывает устройство вывода и подключает микшер
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := speaker.Init(p.opts.SampleRate, p.opts.SampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(p.mixer)
	p.started = true
	p.log.Info("вывод звука запущен, %d Гц", p.opts.SampleRate)
	return nil
}

// Close останавливает все звуки и закрывает устройство
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		p.mixer.Clear()
		return
	}
	speaker.Clear()
	speaker.Close()
	p.started = false
}

// SetListener переносит слушателя (камеру)
func (p *Player) SetListener(origin mgl64.Vec3) {
	p.mu.Lock()
	p.listener = origin
	p.mu.Unlock()
}

// Load реализует effects.Sounds. Ненайденное имя запоминается и больше не ищется.
func (p *Player) Load(name string) (effects.Sample, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.cache[name]; ok {
		return s, true
	}
	if name == "" || p.missing[name] {
		return nil, false
	}

	s, err := p.decode(name)
	if err != nil {
		p.log.Warn("звук %s не загружен: %v", name, err)
		p.missing[name] = true
		return nil, false
	}
	p.cache[name] = s
	p.log.Debug("звук %s загружен, %d кадров", name, s.Len())
	return s, true
}

func (p *Player) decode(name string) (*Sample, error) {
	for _, ext := range extensions {
		path := filepath.Join(p.opts.Dir, filepath.FromSlash(name)+ext)
		f, err := os.Open(path)
		if err != nil {
			continue
		}

		var (
			stream beep.StreamSeekCloser
			format beep.Format
		)
		switch ext {
		case ".ogg":
			stream, format, err = vorbis.Decode(f)
		default:
			stream, format, err = wav.Decode(f)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}

		var src beep.Streamer = stream
		if format.SampleRate != p.opts.SampleRate {
			src = beep.Resample(4, format.SampleRate, p.opts.SampleRate, stream)
		}
		buf := beep.NewBuffer(beep.Format{SampleRate: p.opts.SampleRate, NumChannels: 2, Precision: 2})
		buf.Append(src)
		stream.Close()
		return &Sample{name: name, buf: buf}, nil
	}
	return nil, os.ErrNotExist
}

// Play реализует effects.Sounds
func (p *Player) Play(origin mgl64.Vec3, s effects.Sample, attenuation, volume float64) {
	sample, ok := s.(*Sample)
	if !ok || sample == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	gain := Gain(origin.Sub(p.listener).Len(), attenuation, volume, p.opts.MaxDistance)
	if gain <= 0 {
		return
	}
	streamer := withGain(sample.buf.Streamer(0, sample.buf.Len()), gain)

	if p.started {
		speaker.Lock()
		p.mixer.Add(streamer)
		speaker.Unlock()
		return
	}
	p.mixer.Add(streamer)
}

// Playing возвращает число звучащих потоков
func (p *Player) Playing() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.mixer.Len()
}

// Stream отдаёт смешанный поток; используется без устройства вывода
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Stream(samples)
}

// Gain - линейная громкость звука на расстоянии dist.
// Затухание 0 слышно везде, большее затухание глушит звук на MaxDistance/attenuation.
func Gain(dist, attenuation, volume, maxDistance float64) float64 {
	if volume <= 0 {
		return 0
	}
	if volume > 1 {
		volume = 1
	}
	if attenuation <= 0 {
		return volume
	}
	g := 1 - dist*attenuation/maxDistance
	if g <= 0 {
		return 0
	}
	return volume * g
}

func withGain(s beep.Streamer, gain float64) beep.Streamer {
	return &beffects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
