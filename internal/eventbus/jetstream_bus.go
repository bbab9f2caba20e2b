package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/battlescape/internal/logging"
	nats "github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix - префикс subject'ов событий боя
const DefaultSubjectPrefix = "battlescape"

// JetStreamOptions - параметры подключения к JetStream
type JetStreamOptions struct {
	URL       string        // nats://127.0.0.1:4222
	Stream    string        // имя стрима, по умолчанию BATTLESCAPE
	Prefix    string        // префикс subject'ов
	Retention time.Duration // MaxAge стрима
}

// JetStreamBus реализует EventBus поверх NATS JetStream.
// Subject события: <prefix>.<type>, например battlescape.le.delta.
type JetStreamBus struct {
	nc        *nats.Conn
	js        nats.JetStreamContext
	stream    string
	prefix    string
	log       *logging.Logger
	published uint64
	consumed  uint64
	dropped   uint64
}

// NewJetStreamBus подключается к NATS и создаёт стрим, если его нет.
func NewJetStreamBus(opts JetStreamOptions) (*JetStreamBus, error) {
	if opts.Stream == "" {
		opts.Stream = "BATTLESCAPE"
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultSubjectPrefix
	}

	nc, err := nats.Connect(opts.URL, nats.Name("battlescape"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if _, err := js.StreamInfo(opts.Stream); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:      opts.Stream,
			Subjects:  []string{opts.Prefix + ".>"},
			Retention: nats.LimitsPolicy,
			MaxAge:    opts.Retention,
			Storage:   nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("add stream %s: %w", opts.Stream, err)
		}
	}

	log := logging.GetComponentLogger("eventbus")
	log.Info("JetStream %s подключён, стрим %s", opts.URL, opts.Stream)
	return &JetStreamBus{nc: nc, js: js, stream: opts.Stream, prefix: opts.Prefix, log: log}, nil
}

// Subject возвращает subject для типа события
func (jb *JetStreamBus) Subject(eventType string) string {
	return jb.prefix + "." + eventType
}

// Publish сериализует Envelope в JSON и публикует в <prefix>.<type>.
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return err
	}
	if _, err := jb.js.Publish(jb.Subject(ev.EventType), data, nats.Context(ctx), nats.MsgId(ev.ID)); err != nil {
		atomic.AddUint64(&jb.dropped, 1)
		return fmt.Errorf("publish %s: %w", ev.EventType, err)
	}
	atomic.AddUint64(&jb.published, 1)
	return nil
}

// Subscribe создаёт упорядоченного эфемерного потребителя: дельты
// должны применяться в порядке публикации.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := jb.prefix + ".>"
	if len(f.Types) == 1 {
		subj = jb.Subject(f.Types[0])
	}

	natSub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			atomic.AddUint64(&jb.dropped, 1)
			jb.log.Warn("битое событие в %s: %v", msg.Subject, err)
			return
		}
		if !matchFilter(&ev, f) {
			return
		}
		h(ctx, &ev)
		atomic.AddUint64(&jb.consumed, 1)
	}, nats.OrderedConsumer(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subj, err)
	}

	go func() {
		<-ctx.Done()
		_ = natSub.Unsubscribe()
	}()
	return &jetSub{natSub}, nil
}

type jetSub struct {
	s *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	_ = j.s.Unsubscribe()
}

// Metrics возвращает текущие метрики.
func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: atomic.LoadUint64(&jb.published),
		Consumed:  atomic.LoadUint64(&jb.consumed),
		Dropped:   atomic.LoadUint64(&jb.dropped),
	}
}

// Close сливает подписки и закрывает соединение
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
