// Package wire defines the message envelope and type-tag vocabulary spoken
// between a ground-control station and the swarm server.
//
// Every frame on the connection is one Message: a 7-character type tag, an
// optional correlation id, and a body whose shape is determined by the tag.
// Commands and queries carry a correlation id; the server echoes it on the
// direct response. Notifications carry no correlation id at all.
//
// # Type Tag Families
//
// Tags fall into three closed families:
//
//   - Commands addressed to one or more drones (TypeFly, TypeTakeoff, ...).
//     These are the only tags whose responses may carry per-target receipts;
//     ReceiptBearing reports membership in that allow-list.
//   - Control and query traffic (TypeRejected, TypeReceiptQuery,
//     TypeStatusQuery, TypeHeartbeat).
//   - Unsolicited notifications (TypeSystemMessage, TypeClockInfo, ...).
//
// # Response Bodies
//
// A response to a receipt-bearing command reports each addressed target in
// exactly one of three maps:
//
//	{"error": {"d1": "battery low"}, "result": {"d2": 42}, "receipt": {"d3": "tok-9"}}
//
// Status responses use top-level "status"/"error" maps keyed by the queried
// id instead. Field names are fixed by the server protocol and must not be
// renamed.
package wire
