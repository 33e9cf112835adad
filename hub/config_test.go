package hub_test

import (
	"testing"
	"time"

	"github.com/skylink-gcs/groundlink/hub"
)

func TestDefaultConfig(t *testing.T) {
	cfg := hub.DefaultConfig()

	if cfg.Name != "groundlink" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.DefaultTimeout)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval)
	}
	if cfg.MaxEmptyPolls <= 0 || cfg.PollBackoffMax <= cfg.PollInterval {
		t.Errorf("backoff config = %d/%v, want positive with ceiling above interval",
			cfg.MaxEmptyPolls, cfg.PollBackoffMax)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := hub.DefaultConfig()
	cfg.Merge(&hub.Config{
		Name:           "gcs-2",
		DefaultTimeout: time.Minute,
		PollBurst:      7,
	})

	if cfg.Name != "gcs-2" {
		t.Errorf("Name = %q, want gcs-2", cfg.Name)
	}
	if cfg.DefaultTimeout != time.Minute {
		t.Errorf("DefaultTimeout = %v, want 1m", cfg.DefaultTimeout)
	}
	if cfg.PollBurst != 7 {
		t.Errorf("PollBurst = %d, want 7", cfg.PollBurst)
	}
	// Untouched fields keep their defaults.
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want default 1s", cfg.PollInterval)
	}
}

func TestConfig_MergeIgnoresZeroValues(t *testing.T) {
	cfg := hub.DefaultConfig()
	want := cfg
	cfg.Merge(&hub.Config{})

	if cfg.Name != want.Name || cfg.DefaultTimeout != want.DefaultTimeout ||
		cfg.PollInterval != want.PollInterval || cfg.PollRate != want.PollRate {
		t.Errorf("Merge(zero) changed config: %+v", cfg)
	}
}
