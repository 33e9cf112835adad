package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skylink-gcs/groundlink/hub"
	"github.com/skylink-gcs/groundlink/snapshot"
	"github.com/skylink-gcs/groundlink/transport"
)

const defaultFlushInterval = 10 * time.Second

// Duration wraps time.Duration for config files. Values are Go duration
// strings such as "30s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds initialization parameters for the daemon and its subsystems.
// Zero values in the Hub and Transport sections fall through to those
// packages' defaults.
type Config struct {
	// Server is the swarm server address, host:port. Required unless a
	// transport adapter is injected.
	Server string `json:"server" yaml:"server"`
	// MetricsAddr serves prometheus metrics on /metrics when set
	// (e.g. ":9120"); empty disables the endpoint.
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
	// FlushInterval is the cadence of fleet snapshot write-back.
	FlushInterval Duration `json:"flush_interval,omitempty" yaml:"flush_interval,omitempty"`

	Hub       HubConfig       `json:"hub" yaml:"hub"`
	Transport TransportConfig `json:"transport" yaml:"transport"`
	Snapshot  snapshot.Config `json:"snapshot" yaml:"snapshot"`
}

// HubConfig is the file-facing subset of hub tunables.
type HubConfig struct {
	DefaultTimeout Duration `json:"default_timeout,omitempty" yaml:"default_timeout,omitempty"`
	PollInterval   Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	PollTimeout    Duration `json:"poll_timeout,omitempty" yaml:"poll_timeout,omitempty"`
	MaxEmptyPolls  int      `json:"max_empty_polls,omitempty" yaml:"max_empty_polls,omitempty"`
	PollBackoffMax Duration `json:"poll_backoff_max,omitempty" yaml:"poll_backoff_max,omitempty"`
	PollRate       float64  `json:"poll_rate,omitempty" yaml:"poll_rate,omitempty"`
	PollBurst      int      `json:"poll_burst,omitempty" yaml:"poll_burst,omitempty"`
}

// TransportConfig is the file-facing subset of TCP adapter tunables.
type TransportConfig struct {
	HeartbeatInterval Duration `json:"heartbeat_interval,omitempty" yaml:"heartbeat_interval,omitempty"`
	MaxFrameBytes     int      `json:"max_frame_bytes,omitempty" yaml:"max_frame_bytes,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		FlushInterval: Duration(defaultFlushInterval),
		Snapshot:      snapshot.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Server != "" {
		c.Server = source.Server
	}
	if source.MetricsAddr != "" {
		c.MetricsAddr = source.MetricsAddr
	}
	if source.FlushInterval > 0 {
		c.FlushInterval = source.FlushInterval
	}

	if source.Hub.DefaultTimeout > 0 {
		c.Hub.DefaultTimeout = source.Hub.DefaultTimeout
	}
	if source.Hub.PollInterval > 0 {
		c.Hub.PollInterval = source.Hub.PollInterval
	}
	if source.Hub.PollTimeout > 0 {
		c.Hub.PollTimeout = source.Hub.PollTimeout
	}
	if source.Hub.MaxEmptyPolls > 0 {
		c.Hub.MaxEmptyPolls = source.Hub.MaxEmptyPolls
	}
	if source.Hub.PollBackoffMax > 0 {
		c.Hub.PollBackoffMax = source.Hub.PollBackoffMax
	}
	if source.Hub.PollRate > 0 {
		c.Hub.PollRate = source.Hub.PollRate
	}
	if source.Hub.PollBurst > 0 {
		c.Hub.PollBurst = source.Hub.PollBurst
	}

	if source.Transport.HeartbeatInterval > 0 {
		c.Transport.HeartbeatInterval = source.Transport.HeartbeatInterval
	}
	if source.Transport.MaxFrameBytes > 0 {
		c.Transport.MaxFrameBytes = source.Transport.MaxFrameBytes
	}

	c.Snapshot.Merge(&source.Snapshot)
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. The decoder is chosen by extension: .yaml and .yml parse
// as YAML, everything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// hubConfig translates the file-facing section into hub.Config overrides.
// Zero values are filled by hub.New from hub.DefaultConfig.
func (c *Config) hubConfig() hub.Config {
	return hub.Config{
		DefaultTimeout: time.Duration(c.Hub.DefaultTimeout),
		PollInterval:   time.Duration(c.Hub.PollInterval),
		PollTimeout:    time.Duration(c.Hub.PollTimeout),
		MaxEmptyPolls:  c.Hub.MaxEmptyPolls,
		PollBackoffMax: time.Duration(c.Hub.PollBackoffMax),
		PollRate:       c.Hub.PollRate,
		PollBurst:      c.Hub.PollBurst,
	}
}

// transportConfig translates the file-facing section into transport.Config
// overrides.
func (c *Config) transportConfig() transport.Config {
	return transport.Config{
		HeartbeatInterval: time.Duration(c.Transport.HeartbeatInterval),
		MaxFrameBytes:     c.Transport.MaxFrameBytes,
	}
}
