package hub

import "github.com/skylink-gcs/groundlink/observability"

// Hub event types emitted through the observer.
const (
	EventCommandSent         observability.EventType = "hub.command.sent"
	EventCommandSettled      observability.EventType = "hub.command.settled"
	EventNotificationDropped observability.EventType = "hub.notification.dropped"
	EventHandlerPanic        observability.EventType = "hub.handler.panic"
	EventReceiptWait         observability.EventType = "hub.receipt.wait"
	EventReceiptPoll         observability.EventType = "hub.receipt.poll"
	EventReceiptResolved     observability.EventType = "hub.receipt.resolved"
	EventProtocolViolation   observability.EventType = "hub.protocol.violation"
	EventResponseDropped     observability.EventType = "hub.response.dropped"
)
