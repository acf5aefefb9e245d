package service

// EventPublisher is the interface for publishing notification lifecycle
// events. eventbus.EventBus satisfies it.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}
