package delta

import (
	"context"

	"github.com/annel0/battlescape/internal/eventbus"
	"github.com/annel0/battlescape/internal/logging"
)

// Publish отправляет дельту в шину событий сессии
func Publish(ctx context.Context, bus eventbus.EventBus, source, session string, d Delta) error {
	ev, err := eventbus.NewEnvelope(source, eventbus.TypeDelta, session, d)
	if err != nil {
		return err
	}
	// дельты не отбрасываются при заполненной очереди
	ev.Priority = 9
	return bus.Publish(ctx, ev)
}

// Subscribe перекладывает дельты сессии из шины в очередь
func Subscribe(ctx context.Context, bus eventbus.EventBus, session string, q *Queue) (eventbus.Subscription, error) {
	log := logging.GetComponentLogger("delta")
	return bus.Subscribe(ctx, eventbus.Filter{Types: []string{eventbus.TypeDelta}}, func(ctx context.Context, ev *eventbus.Envelope) {
		if session != "" && ev.CorrelationID != session {
			return
		}
		var d Delta
		if err := ev.Decode(&d); err != nil {
			log.Warn("битая дельта: %v", err)
			return
		}
		if err := q.Push(ctx, d); err != nil {
			log.Warn("дельта %s не поставлена в очередь: %v", d, err)
		}
	})
}
