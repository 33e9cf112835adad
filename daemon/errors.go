package daemon

import "errors"

// Sentinel errors for daemon initialization and shutdown.
var (
	ErrServerRequired = errors.New("server address required")
	ErrLinkLost       = errors.New("swarm server link lost")
)
