// Package transport carries wire messages between the ground station and
// the swarm server. The hub depends only on the Adapter interface; the TCP
// implementation speaks newline-delimited JSON frames, and Pipe provides an
// in-memory pair for tests and local development.
package transport

import (
	"errors"

	"github.com/skylink-gcs/groundlink/wire"
)

// ErrNotConnected is returned by Send after the connection is gone.
var ErrNotConnected = errors.New("transport not connected")

// Adapter is a connected, message-oriented transport. Send transmits one
// message and fails if the connection is down. SetListener registers the
// single arrival callback; the adapter invokes it sequentially, one message
// at a time, for the rest of its lifetime.
type Adapter interface {
	Send(msg *wire.Message) error
	SetListener(fn func(*wire.Message))
}
