package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	// Batch lifecycle
	EventTypeBatchStarted   EventType = "batch.started"
	EventTypeBatchCompleted EventType = "batch.completed"

	// Account lifecycle
	EventTypeAccountStarted   EventType = "account.started"
	EventTypeAccountCompleted EventType = "account.completed"

	// Task progress
	EventTypeRoundCompleted EventType = "round.completed"
	EventTypeLogLine        EventType = "log.line"

	// Error events
	EventTypeError EventType = "error"
)

// Event represents a system event with metadata
type Event struct {
	Type      EventType
	Source    string
	Timestamp time.Time
	Data      map[string]interface{}
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// EventBus defines the interface for event pub/sub
type EventBus interface {
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Publish(event Event)
	Stop()
}

// NewBatchStartedEvent creates a batch started event
func NewBatchStartedEvent(total int) Event {
	return Event{
		Type:      EventTypeBatchStarted,
		Source:    "batch",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"total_accounts": total,
		},
	}
}

// NewBatchCompletedEvent creates a batch completed event
func NewBatchCompletedEvent(succeeded, failed int) Event {
	return Event{
		Type:      EventTypeBatchCompleted,
		Source:    "batch",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"succeeded": succeeded,
			"failed":    failed,
		},
	}
}

// NewAccountStartedEvent creates an account started event
func NewAccountStartedEvent(alias string, index, total int) Event {
	return Event{
		Type:      EventTypeAccountStarted,
		Source:    "runner",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"alias": alias,
			"index": index,
			"total": total,
		},
	}
}

// NewAccountCompletedEvent creates an account completed event
func NewAccountCompletedEvent(alias string, success bool, errMsg string) Event {
	return Event{
		Type:      EventTypeAccountCompleted,
		Source:    "runner",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"alias":   alias,
			"success": success,
			"error":   errMsg,
		},
	}
}

// NewRoundCompletedEvent creates a round completed event
func NewRoundCompletedEvent(alias string, round int, claimed bool) Event {
	return Event{
		Type:      EventTypeRoundCompleted,
		Source:    "runner",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"alias":   alias,
			"round":   round,
			"claimed": claimed,
		},
	}
}

// NewLogLineEvent creates a log line event for live display
func NewLogLineEvent(alias, line string) Event {
	return Event{
		Type:      EventTypeLogLine,
		Source:    "runner",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"alias": alias,
			"line":  line,
		},
	}
}
