package host

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/trinity-go/trinity/internal/errors"
)

// Duration wraps time.Duration for YAML decoding of values like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds host server configuration.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// ReadTimeout is the WebSocket read deadline per message.
	ReadTimeout Duration `yaml:"read_timeout"`

	// WriteTimeout is the WebSocket write deadline per message.
	WriteTimeout Duration `yaml:"write_timeout"`

	// HeartbeatInterval is the server ping interval.
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`

	// QueueSize is the per-session loop dispatch queue capacity.
	QueueSize int `yaml:"queue_size"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsSettings `yaml:"metrics"`

	// Snapshot configures the optional snapshot store.
	Snapshot SnapshotSettings `yaml:"snapshot"`
}

// MetricsSettings configures the /metrics endpoint.
type MetricsSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// SnapshotSettings configures the snapshot store backend.
type SnapshotSettings struct {
	// Backend is "", "memory", or "s3".
	Backend string `yaml:"backend"`

	// Bucket and Prefix apply to the s3 backend.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:            ":8420",
		ReadTimeout:       Duration(60 * time.Second),
		WriteTimeout:      Duration(10 * time.Second),
		HeartbeatInterval: Duration(30 * time.Second),
		QueueSize:         256,
		ShutdownTimeout:   Duration(10 * time.Second),
		Metrics: MetricsSettings{
			Enabled:   true,
			Namespace: "trinity",
		},
	}
}

// LoadConfig reads a YAML config file, filling unset fields with
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E140").WithDetailf("config file %q does not exist", path).Wrap(err)
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data, filling unset fields with
// defaults and validating the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("E121").WithDetail("listen address is required")
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return errors.New("E122").WithDetailf("listen address %q", c.Listen).Wrap(err)
	}
	if c.QueueSize < 0 {
		return errors.New("E121").WithDetailf("queue_size must be non-negative, got %d", c.QueueSize)
	}
	switch c.Snapshot.Backend {
	case "", "memory":
	case "s3":
		if c.Snapshot.Bucket == "" {
			return errors.New("E123").WithDetail("s3 backend requires a bucket")
		}
	default:
		return errors.New("E123").WithDetailf("unknown backend %q", c.Snapshot.Backend)
	}
	return nil
}
