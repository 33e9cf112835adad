package hub

import "encoding/json"

// DispatchFunc forwards an application-level action derived from a
// notification (a state update, a UI notice) to whatever the surrounding
// application wired in. Implementations must not block.
type DispatchFunc func(action string, data any)

// NotificationHandler consumes the body of one unsolicited server message.
// Handlers receive the raw body and the application dispatch function, return
// nothing, and must not block; a panicking handler is caught and reported
// without disturbing delivery of later notifications.
type NotificationHandler func(body json.RawMessage, dispatch DispatchFunc)

// NoticeFunc is the error-reporting side channel. The hub calls it with a
// human-readable message whenever a notification handler panics or the server
// violates the response contract; the application decides how to surface it.
type NoticeFunc func(message string)
