package hub

import (
	"time"

	"github.com/skylink-gcs/groundlink/observability"
)

// Config defines configuration for a Hub instance. Dispatch and Notice are
// wiring, not tunables: they connect the hub to the surrounding application.
type Config struct {
	// Hub identity, used in events and metrics.
	Name string

	// DefaultTimeout bounds a SendCommand call end to end, receipt polling
	// included, when the caller supplies no explicit timeout.
	DefaultTimeout time.Duration

	// Receipt polling cadence.
	PollInterval   time.Duration // base tick between receipt polls
	PollTimeout    time.Duration // how long one poll waits for its response
	MaxEmptyPolls  int           // consecutive empty polls before backing off
	PollBackoffMax time.Duration // ceiling for the backed-off interval
	PollRate       float64       // outbound poll budget, polls per second
	PollBurst      int

	// ResponseBuffer is the per-command buffer for routed responses.
	ResponseBuffer int

	// Application wiring.
	Dispatch DispatchFunc
	Notice   NoticeFunc
	Observer observability.Observer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:           "groundlink",
		DefaultTimeout: 30 * time.Second,
		PollInterval:   time.Second,
		PollTimeout:    5 * time.Second,
		MaxEmptyPolls:  5,
		PollBackoffMax: 10 * time.Second,
		PollRate:       4,
		PollBurst:      2,
		ResponseBuffer: 8,
	}
}

func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.DefaultTimeout > 0 {
		c.DefaultTimeout = source.DefaultTimeout
	}
	if source.PollInterval > 0 {
		c.PollInterval = source.PollInterval
	}
	if source.PollTimeout > 0 {
		c.PollTimeout = source.PollTimeout
	}
	if source.MaxEmptyPolls > 0 {
		c.MaxEmptyPolls = source.MaxEmptyPolls
	}
	if source.PollBackoffMax > 0 {
		c.PollBackoffMax = source.PollBackoffMax
	}
	if source.PollRate > 0 {
		c.PollRate = source.PollRate
	}
	if source.PollBurst > 0 {
		c.PollBurst = source.PollBurst
	}
	if source.ResponseBuffer > 0 {
		c.ResponseBuffer = source.ResponseBuffer
	}
	if source.Dispatch != nil {
		c.Dispatch = source.Dispatch
	}
	if source.Notice != nil {
		c.Notice = source.Notice
	}
	if source.Observer != nil {
		c.Observer = source.Observer
	}
}
