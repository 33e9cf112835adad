package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skylink-gcs/groundlink/observability"
	"github.com/skylink-gcs/groundlink/transport"
	"github.com/skylink-gcs/groundlink/wire"
)

// Hub is the process-wide dispatcher between the swarm server connection and
// the rest of the application. It routes unsolicited notifications to
// registered handlers, matches command responses to pending commands by
// correlation id, and drives receipt tokens to terminal outcomes.
//
// All mutation of shared state (the pending-command map and the handler
// registry) happens under one mutex; inbound processing is serialized by the
// transport's single arrival callback.
type Hub struct {
	name     string
	adapter  transport.Adapter
	dispatch DispatchFunc
	notice   NoticeFunc
	observer observability.Observer

	mu       sync.Mutex
	pending  map[string]chan *wire.Message
	handlers map[wire.Type]NotificationHandler

	receipts *receiptResolver
	metrics  *Metrics

	defaultTimeout time.Duration
	responseBuffer int

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Hub wired to the given transport adapter and starts the
// receipt resolution loop. The hub registers itself as the adapter's single
// arrival listener for its lifetime.
func New(ctx context.Context, cfg Config, adapter transport.Adapter) *Hub {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	hubCtx, cancel := context.WithCancel(ctx)

	h := &Hub{
		name:           merged.Name,
		adapter:        adapter,
		dispatch:       merged.Dispatch,
		notice:         merged.Notice,
		observer:       merged.Observer,
		pending:        make(map[string]chan *wire.Message),
		handlers:       make(map[wire.Type]NotificationHandler),
		metrics:        NewMetrics(),
		defaultTimeout: merged.DefaultTimeout,
		responseBuffer: merged.ResponseBuffer,
		ctx:            hubCtx,
		cancel:         cancel,
	}

	if h.observer == nil {
		h.observer = observability.NoOpObserver{}
	}
	if h.dispatch == nil {
		h.dispatch = func(string, any) {}
	}
	if h.notice == nil {
		h.notice = func(message string) {
			h.emit(EventProtocolViolation, observability.LevelWarning, map[string]any{
				"notice": message,
			})
		}
	}

	h.receipts = newReceiptResolver(h, merged)

	adapter.SetListener(h.handleInbound)
	go h.receipts.run(hubCtx)

	return h
}

// RegisterNotificationHandlers merges the given type-to-handler mapping into
// the registry. A later registration for an already-registered type replaces
// the earlier handler; the registry is otherwise append-only.
func (h *Hub) RegisterNotificationHandlers(mapping map[wire.Type]NotificationHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for t, handler := range mapping {
		h.handlers[t] = handler
	}
}

// Metrics returns a snapshot of the hub's counters.
func (h *Hub) Metrics() MetricsSnapshot {
	return h.metrics.Snapshot()
}

// Collector returns a prometheus collector exposing the hub's counters,
// labeled with the hub name.
func (h *Hub) Collector() prometheus.Collector {
	return h.metrics.Collector(h.name)
}

// Shutdown stops the receipt loop and releases hub resources. Pending
// SendCommand calls return with the hub context error.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()

	select {
	case <-h.receipts.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("hub shutdown timeout after %v", timeout)
	}
}

// handleInbound is the single transport arrival listener. A message carrying
// the correlation id of a pending command is routed to that command; every
// other message, correlated or not, goes through the notification path.
func (h *Hub) handleInbound(msg *wire.Message) {
	h.metrics.RecordMessageRecv(1)

	if msg.CID != "" {
		h.mu.Lock()
		ch, ok := h.pending[msg.CID]
		h.mu.Unlock()

		if ok {
			select {
			case ch <- msg:
			default:
				// buffer exhausted; the command is already settling
				h.emit(EventResponseDropped, observability.LevelWarning, map[string]any{
					"cid":  msg.CID,
					"type": msg.Type,
				})
			}
			return
		}
	}

	h.dispatchNotification(msg)
}

// dispatchNotification delivers a non-correlated message to the handler
// registered for its type. Unregistered types are dropped silently; the set
// of types the server may emit is not statically closed. A panicking handler
// is caught and reported; delivery of later notifications is unaffected.
func (h *Hub) dispatchNotification(msg *wire.Message) {
	h.mu.Lock()
	handler, ok := h.handlers[msg.Type]
	h.mu.Unlock()

	if !ok {
		h.metrics.RecordNotificationDropped(1)
		h.emit(EventNotificationDropped, observability.LevelVerbose, map[string]any{
			"type": msg.Type,
		})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.metrics.RecordHandlerPanic(1)
			h.notice(fmt.Sprintf("notification handler for %s failed: %v", msg.Type, r))
			h.emit(EventHandlerPanic, observability.LevelError, map[string]any{
				"type":  msg.Type,
				"panic": fmt.Sprint(r),
			})
		}
	}()

	handler(msg.Body, h.dispatch)
	h.metrics.RecordNotificationDispatched(1)
}

// await registers a response channel for a correlation id.
func (h *Hub) await(cid string) chan *wire.Message {
	ch := make(chan *wire.Message, h.responseBuffer)
	h.mu.Lock()
	h.pending[cid] = ch
	h.mu.Unlock()
	return ch
}

func (h *Hub) unawait(cid string) {
	h.mu.Lock()
	delete(h.pending, cid)
	h.mu.Unlock()
}

func (h *Hub) emit(t observability.EventType, level observability.Level, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["hub"] = h.name
	h.observer.OnEvent(h.ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "hub",
		Data:      data,
	})
}
