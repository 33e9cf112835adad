package fleet

import (
	"encoding/json"
	"fmt"

	"github.com/skylink-gcs/groundlink/hub"
	"github.com/skylink-gcs/groundlink/wire"
)

// Dispatch actions emitted toward the application layer.
const (
	ActionSystemMessage = "system_message"
	ActionFleetChanged  = "fleet_changed"
)

// Handlers returns the notification handler set for the fleet model, keyed
// by type tag and ready for Hub.RegisterNotificationHandlers. notice receives
// a line for each body that fails to decode; pass nil to drop them.
func Handlers(store *Store, notice hub.NoticeFunc) map[wire.Type]hub.NotificationHandler {
	if notice == nil {
		notice = func(string) {}
	}

	return map[wire.Type]hub.NotificationHandler{
		wire.TypeClockInfo: func(body json.RawMessage, _ hub.DispatchFunc) {
			var b wire.ClockInfoBody
			if !decode(notice, wire.TypeClockInfo, body, &b) {
				return
			}
			store.SetClock(b.ServerTime)
		},

		wire.TypeLinkState: func(body json.RawMessage, dispatch hub.DispatchFunc) {
			var b wire.LinkStateBody
			if !decode(notice, wire.TypeLinkState, body, &b) {
				return
			}
			store.SetLink(b.ID, b.Connected)
			dispatch(ActionFleetChanged, b.ID)
		},

		wire.TypeObjectDelete: func(body json.RawMessage, dispatch hub.DispatchFunc) {
			var b wire.ObjectDeleteBody
			if !decode(notice, wire.TypeObjectDelete, body, &b) {
				return
			}
			store.Remove(b.ID)
			dispatch(ActionFleetChanged, b.ID)
		},

		wire.TypePosition: func(body json.RawMessage, dispatch hub.DispatchFunc) {
			var b wire.PositionBody
			if !decode(notice, wire.TypePosition, body, &b) {
				return
			}
			store.UpdatePosition(b)
			dispatch(ActionFleetChanged, b.ID)
		},

		wire.TypeSystemMessage: func(body json.RawMessage, dispatch hub.DispatchFunc) {
			var b wire.SystemMessageBody
			if !decode(notice, wire.TypeSystemMessage, body, &b) {
				return
			}
			dispatch(ActionSystemMessage, b)
		},
	}
}

func decode(notice hub.NoticeFunc, t wire.Type, body json.RawMessage, into any) bool {
	if len(body) == 0 {
		notice(fmt.Sprintf("%s notification with empty body", t))
		return false
	}
	if err := json.Unmarshal(body, into); err != nil {
		notice(fmt.Sprintf("%s notification body undecodable: %v", t, err))
		return false
	}
	return true
}
