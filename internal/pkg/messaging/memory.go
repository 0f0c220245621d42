package messaging

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrMemoryQueueFull is returned when a group queue has no room left.
var ErrMemoryQueueFull = errors.New("messaging: memory queue is full")

// Memory is an in-process broker. Every group subscribed to a topic receives
// each message once; consumers in the same group share it. Messages published
// before any consumer subscribes are dropped.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]chan *memoryMessage
	closed bool
	buffer int
}

// NewMemory returns a Memory broker whose per-group queues hold buffer messages.
func NewMemory(buffer int) *Memory {
	if buffer < 1 {
		buffer = 64
	}
	return &Memory{groups: make(map[string]map[string]chan *memoryMessage), buffer: buffer}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return PublishResult{}, io.ErrClosedPipe
	}

	now := time.Now()
	for _, ch := range m.groups[destination] {
		mm := &memoryMessage{topic: destination, out: msg, ts: now}
		select {
		case ch <- mm:
		default:
			return PublishResult{}, ErrMemoryQueueFull
		}
	}

	return PublishResult{Topic: destination, Timestamp: now}, nil
}

func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	ch, err := m.subscribe(source, co.group)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case mm := <-ch:
					dispatch(ctx, "memory", handler, mm, co.autoAck)
				}
			}
		})
	}
	wg.Wait()
	return nil
}

func (m *Memory) subscribe(topic, group string) (chan *memoryMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}
	byGroup, ok := m.groups[topic]
	if !ok {
		byGroup = make(map[string]chan *memoryMessage)
		m.groups[topic] = byGroup
	}
	ch, ok := byGroup[group]
	if !ok {
		ch = make(chan *memoryMessage, m.buffer)
		byGroup[group] = ch
	}
	return ch, nil
}

type memoryMessage struct {
	topic string
	out   OutgoingMessage
	ts    time.Time
	done  atomic.Bool
}

func (m *memoryMessage) Body() []byte         { return m.out.Body }
func (m *memoryMessage) Key() []byte          { return m.out.Key }
func (m *memoryMessage) Headers() []Header    { return m.out.Headers }
func (m *memoryMessage) Topic() string        { return m.topic }
func (m *memoryMessage) Timestamp() time.Time { return m.ts }
func (m *memoryMessage) responded() bool      { return m.done.Load() }

func (m *memoryMessage) Ack(context.Context) error {
	m.done.Store(true)
	return nil
}

func (m *memoryMessage) Nack(context.Context) error {
	m.done.Store(true)
	return nil
}
