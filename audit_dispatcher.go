package goBlog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/goBlog/middleware"
)

// auditDispatcher hands session events to the sink on its own goroutine so a
// slow sink never delays a session operation.
type auditDispatcher struct {
	sink       AuditSink
	dropIfFull bool
	log        zerolog.Logger

	queue     chan AuditEvent
	stop      chan struct{}
	finished  chan struct{}
	dropped   atomic.Uint64
	delivered atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, log zerolog.Logger) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		log:        log,
		queue:      make(chan AuditEvent, size),
		stop:       make(chan struct{}),
		finished:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *auditDispatcher) loop() {
	defer close(d.finished)

	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-d.stop:
			for {
				select {
				case ev := <-d.queue:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) deliver(ev AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("event", ev.EventType).Str("panic", fmt.Sprint(r)).Msg("goblog: audit sink panicked")
		}
	}()
	d.sink.Emit(context.Background(), ev)
	d.delivered.Add(1)
}

// emit stamps ev with the time and the request ID carried by ctx, then queues
// it. With dropIfFull a full queue drops the event; otherwise emit waits for
// room until ctx ends or the dispatcher closes.
func (d *auditDispatcher) emit(ctx context.Context, ev AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if ev.RequestID == "" {
		ev.RequestID = middleware.RequestIDFromContext(ctx)
	}

	if d.dropIfFull {
		select {
		case d.queue <- ev:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- ev:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.stop:
	}
}

func (d *auditDispatcher) close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		<-d.finished
	})
}

func (d *auditDispatcher) droppedCount() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (d *auditDispatcher) deliveredCount() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
