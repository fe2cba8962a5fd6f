package events

import (
	"sync"
	"time"

	"plexlink/pkg/logging"

	evbus "github.com/asaskevich/EventBus"
)

// Bus publishes state snapshots and notifications. A nil *Bus is valid and
// drops everything, so state machines work without observers.
type Bus struct {
	bus evbus.Bus

	mu        sync.RWMutex
	templates *MessageTemplateEngine
	now       func() time.Time
}

// NewBus creates a new, empty Bus.
func NewBus() *Bus {
	return &Bus{
		bus:       evbus.New(),
		templates: NewMessageTemplateEngine(),
		now:       time.Now,
	}
}

// Publish sends arg to every subscriber of topic.
func (b *Bus) Publish(topic string, arg interface{}) {
	if b == nil {
		return
	}
	b.bus.Publish(topic, arg)
}

// Subscribe registers fn, a func taking the topic's payload type.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Subscribe(topic, fn)
}

// Unsubscribe removes a handler registered with Subscribe.
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	return b.bus.Unsubscribe(topic, fn)
}

// SetTemplate customizes the notification message for reason.
func (b *Bus) SetTemplate(reason EventReason, template string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.templates.SetTemplate(reason, template)
}

// Notify renders and publishes a notification on TopicNotify.
func (b *Bus) Notify(reason EventReason, data EventData) {
	if b == nil {
		return
	}

	b.mu.RLock()
	message := b.templates.Render(reason, data)
	b.mu.RUnlock()

	n := Notification{
		Type:    getEventType(reason),
		Reason:  reason,
		Message: message,
		Time:    b.now(),
	}

	logging.Debug("events", "Notification: reason=%s, type=%s, message=%s", reason, n.Type, message)
	b.bus.Publish(TopicNotify, n)
}
