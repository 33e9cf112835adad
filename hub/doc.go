// Package hub implements the message hub between the ground-control
// application and the swarm server connection.
//
// The hub is the single owner of correlation state. Every inbound message is
// classified once: responses carrying the correlation id of a pending command
// are routed to that command, everything else flows through the notification
// registry. Commands address one or more drones and settle with exactly one
// terminal outcome per target.
//
// # Sending Commands
//
//	h := hub.New(ctx, hub.DefaultConfig(), adapter)
//	outcomes, err := h.SendCommand(ctx, wire.TypeTakeoff, []string{"d1", "d2"}, nil)
//	for id, o := range outcomes {
//	    if o.Err() != nil {
//	        log.Printf("%s failed: %v", id, o.Err())
//	    }
//	}
//
// A response may resolve a target immediately (result or error) or hand back
// a receipt token. Receipts are polled in the background, batched into one
// query across all pending commands, until they resolve or the command's
// deadline fires. Callers never see a receipt: SendCommand returns only
// Result and Error outcomes.
//
// # Notifications
//
// Handlers are registered per type tag at startup; a later registration for
// the same tag replaces the earlier one. Unregistered tags are dropped
// silently, and a panicking handler is caught and reported through the
// notice side channel without stopping delivery:
//
//	h.RegisterNotificationHandlers(map[wire.Type]hub.NotificationHandler{
//	    wire.TypeClockInfo: func(body json.RawMessage, dispatch hub.DispatchFunc) { ... },
//	})
//
// # Failure Taxonomy
//
// Per-target failures carry a *Failure whose Kind classifies them: Rejected
// (whole command refused), TargetFailed, MissingOutcome (server contract
// violation), Timeout, Unsupported, Disconnected. Per-target failures never
// abort the rest of a command; rejections and unsupported response types
// short-circuit all targets identically.
package hub
