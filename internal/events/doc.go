// Package events carries state changes and user-facing notifications from the
// session and connection state machines to whatever presents them.
//
// The Bus wraps an in-process publish/subscribe bus. State machines publish a
// snapshot of their state on every transition (TopicSessionChanged,
// TopicConnectionChanged) and a Notification on TopicNotify when an error
// should be shown to the user. Cancellation never produces a notification.
//
// Notification messages are rendered from per-reason templates by the
// MessageTemplateEngine:
//
//	bus := events.NewBus()
//	bus.Subscribe(events.TopicNotify, func(n events.Notification) {
//		fmt.Println(n.Message)
//	})
//	bus.Notify(events.ReasonServerUnreachable, events.EventData{Server: url, Error: msg})
package events
