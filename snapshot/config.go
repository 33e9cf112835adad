package snapshot

// Config holds snapshot store parameters.
type Config struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"` // root directory; empty disables persistence
}

// DefaultConfig returns the default snapshot configuration (disabled).
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Dir != "" {
		c.Dir = source.Dir
	}
}

// NewStore creates a Store from configuration. Returns nil when Dir is
// empty, indicating persistence is disabled.
func NewStore(cfg *Config) Store {
	if cfg.Dir == "" {
		return nil
	}
	return NewFileStore(cfg.Dir)
}
