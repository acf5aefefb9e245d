package eventbus

import "time"

// Notification lifecycle event types.
const (
	EventNotificationSent   = "notification.sent"
	EventNotificationFailed = "notification.failed"
	EventNotificationStale  = "notification.stale"
)

// Payload keys shared by the notification lifecycle events.
const (
	KeyNotificationID = "notification_id"
	KeyUserID         = "user_id"
	KeyChannel        = "channel"
	KeyDurationNS     = "duration_ns"
	KeyError          = "error"
	KeyCount          = "count"
)

// Event represents an application event published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener is a function that handles an event.
type Listener func(Event)
