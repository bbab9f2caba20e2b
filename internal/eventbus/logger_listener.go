package eventbus

import (
	"context"

	"github.com/annel0/battlescape/internal/logging"
)

// StartLoggingListener пишет в журнал компонента "eventbus" каждое событие.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) (Subscription, error) {
	log := logging.GetComponentLogger("eventbus")
	sub, err := bus.Subscribe(ctx, Filter{}, func(_ context.Context, ev *Envelope) {
		log.WithFields(logging.Fields{
			"id":      ev.ID,
			"source":  ev.Source,
			"session": ev.CorrelationID,
		}).Trace("%s prio=%d size=%dB", ev.EventType, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	log.Info("журнал событий шины включён")
	return sub, nil
}
