package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий боя
const (
	TypeDelta    = "le.delta"        // дельта состояния сущности от сервера
	TypeParticle = "effect.particle" // порождена частица
	TypeSound    = "effect.sound"    // проигран звук
	TypeDesync   = "le.desync"       // кадр прерван фатальной ошибкой
)

// ErrClosed - шина закрыта
var ErrClosed = errors.New("eventbus closed")

// Envelope - контейнер события.
type Envelope struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"ts"`
	Source        string            `json:"source"`
	EventType     string            `json:"type"`
	Version       int               `json:"version"`
	CorrelationID string            `json:"correlation_id,omitempty"` // идентификатор сессии боя
	Priority      int               `json:"priority"`                 // 0=Low … 9=Critical
	Payload       []byte            `json:"payload"`                  // JSON
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEnvelope сериализует payload в JSON и заворачивает в конверт с новым UUID
func NewEnvelope(source, eventType, correlation string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventType, err)
	}
	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     eventType,
		Version:       1,
		CorrelationID: correlation,
		Payload:       data,
	}, nil
}

// Decode разбирает полезную нагрузку в v
func (ev *Envelope) Decode(v interface{}) error {
	if err := json.Unmarshal(ev.Payload, v); err != nil {
		return fmt.Errorf("decode %s %s: %w", ev.EventType, ev.ID, err)
	}
	return nil
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Если пусто - все типы.
	Sources []string // Если пусто - все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus - шина событий (память или JetStream).
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

//================ In-Memory implementation =================//

// memoryBus доставляет события каждому подписчику по порядку публикации
type memoryBus struct {
	mu       sync.Mutex
	subs     map[int]*memSub
	nextID   int
	stats    Stats
	capacity int
	closed   bool
}

// NewMemoryBus создаёт шину в памяти; capacity - очередь каждого подписчика.
func NewMemoryBus(capacity int) EventBus {
	if capacity <= 0 {
		capacity = 1
	}
	return &memoryBus{
		subs:     make(map[int]*memSub),
		capacity: capacity,
	}
}

// Publish кладёт событие в очереди подходящих подписчиков. При полной очереди
// событие с приоритетом ниже 5 отбрасывается, остальные ждут места.
func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return ErrClosed
	}
	targets := make([]*memSub, 0, len(mb.subs))
	for _, s := range mb.subs {
		if matchFilter(ev, s.filter) {
			targets = append(targets, s)
		}
	}
	mb.stats.Published++
	mb.mu.Unlock()

	for _, s := range targets {
		select {
		case s.queue <- ev:
			continue
		case <-s.ctx.Done():
			continue
		default:
		}
		if ev.Priority < 5 {
			mb.mu.Lock()
			mb.stats.Dropped++
			mb.mu.Unlock()
			continue
		}
		select {
		case s.queue <- ev:
		case <-s.ctx.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.closed {
		return nil, ErrClosed
	}

	cctx, cancel := context.WithCancel(ctx)
	s := &memSub{
		bus:    mb,
		id:     mb.nextID,
		filter: f,
		queue:  make(chan *Envelope, mb.capacity),
		ctx:    cctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	mb.nextID++
	mb.subs[s.id] = s
	go s.run(h)
	return s, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	st := mb.stats
	st.InFlight = 0
	for _, s := range mb.subs {
		st.InFlight += len(s.queue)
	}
	return st
}

// Close отписывает всех и дожидается завершения обработчиков
func (mb *memoryBus) Close() error {
	mb.mu.Lock()
	if mb.closed {
		mb.mu.Unlock()
		return nil
	}
	mb.closed = true
	subs := make([]*memSub, 0, len(mb.subs))
	for _, s := range mb.subs {
		subs = append(subs, s)
	}
	mb.subs = map[int]*memSub{}
	mb.mu.Unlock()

	for _, s := range subs {
		s.cancel()
		<-s.done
	}
	return nil
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus    *memoryBus
	id     int
	filter Filter
	queue  chan *Envelope
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *memSub) run(h Handler) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.queue:
			h(s.ctx, ev)
			s.bus.mu.Lock()
			s.bus.stats.Consumed++
			s.bus.mu.Unlock()
		}
	}
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.cancel()
}
