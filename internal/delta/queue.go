package delta

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed - очередь закрыта
var ErrQueueClosed = errors.New("delta queue closed")

// Queue - очередь дельт между сетевой горутиной и циклом кадров
type Queue struct {
	ch     chan Delta
	mu     sync.RWMutex
	closed bool
}

// NewQueue создаёт очередь на capacity дельт
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 256
	}
	return &Queue{ch: make(chan Delta, capacity)}
}

// Push ставит дельту в очередь, ожидая места или отмены ctx
func (q *Queue) Push(ctx context.Context, d Delta) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain забирает все накопленные дельты, не блокируясь
func (q *Queue) Drain(dst []Delta) []Delta {
	for {
		select {
		case d, ok := <-q.ch:
			if !ok {
				return dst
			}
			dst = append(dst, d)
		default:
			return dst
		}
	}
}

// Len возвращает число ожидающих дельт
func (q *Queue) Len() int { return len(q.ch) }

// Close закрывает очередь; накопленные дельты можно забрать через Drain
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
