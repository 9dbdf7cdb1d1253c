package gui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// EventType represents different types of UI events
type EventType int

const (
	EventTypeLogAdd EventType = iota
	EventTypeStatusUpdate
	EventTypeRunStateChanged
	EventTypeResultsRefresh
	EventTypeDialogError
)

// Event represents a UI update event
type Event struct {
	Type EventType
	Data map[string]interface{}
}

// EventHandler processes events
type EventHandler func(Event)

// EventBus funnels updates from worker goroutines onto the main thread. A
// ticker drains the queue so handlers always run where Fyne expects them.
type EventBus struct {
	events   chan Event
	handlers map[EventType][]EventHandler
	mu       sync.RWMutex
	stopCh   chan struct{}
	app      fyne.App
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		events:   make(chan Event, 256),
		handlers: make(map[EventType][]EventHandler),
		stopCh:   make(chan struct{}),
	}
}

// Subscribe registers an event handler for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Publish sends an event to the bus. Safe to call from any goroutine; a full
// queue drops the event rather than blocking a worker.
func (eb *EventBus) Publish(event Event) {
	select {
	case eb.events <- event:
	case <-eb.stopCh:
	default:
	}
}

// Start begins processing events. Must be called after the window exists.
func (eb *EventBus) Start(app fyne.App) {
	eb.app = app

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				eb.drain()
			case <-eb.stopCh:
				return
			}
		}
	}()
}

// Stop stops the event bus
func (eb *EventBus) Stop() {
	close(eb.stopCh)
}

func (eb *EventBus) drain() {
	for {
		select {
		case event := <-eb.events:
			eb.dispatch(event)
		default:
			return
		}
	}
}

func (eb *EventBus) dispatch(event Event) {
	eb.mu.RLock()
	handlers := make([]EventHandler, len(eb.handlers[event.Type]))
	copy(handlers, eb.handlers[event.Type])
	eb.mu.RUnlock()

	for _, handler := range handlers {
		fyne.Do(func() {
			handler(event)
		})
	}
}
