// FILE: lixenwraith/logsink/config.go
package logsink

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/config"
)

// Config holds all pipeline and server configuration values
type Config struct {
	// File sink
	Directory       string `toml:"directory"`
	FilePrefix      string `toml:"file_prefix"` // Files are <prefix>_<YYYY-MM-DD>.<extension>
	Extension       string `toml:"extension"`
	LoggerName      string `toml:"logger_name"` // Second field of every persisted line
	TimestampFormat string `toml:"timestamp_format"`
	SanitizePolicy  string `toml:"sanitize_policy"` // "line", "txt", "json", or "raw"

	// Queue and writer
	QueueMaxSize       int64 `toml:"queue_max_size"`       // <= 0 means unbounded
	PollIntervalMs     int64 `toml:"poll_interval_ms"`     // Writer dequeue timeout
	JoinTimeoutMs      int64 `toml:"join_timeout_ms"`      // Bound on Stop waiting for the writer
	DrainTimeoutMs     int64 `toml:"drain_timeout_ms"`     // 0 waits for a full drain indefinitely
	SyncIntervalMs     int64 `toml:"sync_interval_ms"`     // 0 disables periodic fsync
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // 0 disables the stats line

	// Console
	EnableConsole bool   `toml:"enable_console"`
	ConsoleName   string `toml:"console_name"`
	ConsoleTarget string `toml:"console_target"` // "stdout" or "stderr"
	ConsoleColor  bool   `toml:"console_color"`

	// Server
	HTTPAddress    string `toml:"http_address"`
	TCPAddress     string `toml:"tcp_address"` // Empty disables raw TCP ingest
	EnableMetrics  bool   `toml:"enable_metrics"`
	ReadTimeoutMs  int64  `toml:"read_timeout_ms"`
	WriteTimeoutMs int64  `toml:"write_timeout_ms"`
	MaxBodyKB      int64  `toml:"max_body_kb"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	// File sink
	Directory:       "logs",
	FilePrefix:      "app_log",
	Extension:       "log",
	LoggerName:      "file_logger",
	TimestampFormat: DefaultTimestampFormat,
	SanitizePolicy:  "line",

	// Queue and writer
	QueueMaxSize:       DefaultQueueMaxSize,
	PollIntervalMs:     DefaultPollInterval.Milliseconds(),
	JoinTimeoutMs:      DefaultJoinTimeout.Milliseconds(),
	DrainTimeoutMs:     0,
	SyncIntervalMs:     1000,
	HeartbeatIntervalS: 0,

	// Console
	EnableConsole: true,
	ConsoleName:   "console_logger",
	ConsoleTarget: "stderr",
	ConsoleColor:  false,

	// Server
	HTTPAddress:    "0.0.0.0:5000",
	TCPAddress:     "",
	EnableMetrics:  true,
	ReadTimeoutMs:  5000,
	WriteTimeoutMs: 10000,
	MaxBodyKB:      4096,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config.
// Keys live under the [logsink] table. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("logsink.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "logsink.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as TOML under the [logsink] table
func (c *Config) Save(path string) error {
	loader := config.New()

	if err := loader.RegisterStruct("logsink.", *c); err != nil {
		return fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Save(path); err != nil {
		return fmtErrorf("failed to save config to %s: %w", path, err)
	}
	return nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv applies environment overrides using the given lookup (os.LookupEnv in production).
// LOG_QUEUE_MAX_SIZE: absent keeps the configured value, non-numeric resets to the default, <= 0 is unbounded.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	raw, ok := lookup(EnvQueueMaxSize)
	if !ok {
		return
	}
	size, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		c.QueueMaxSize = DefaultQueueMaxSize
		return
	}
	c.QueueMaxSize = size
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			// TOML decoders may surface integers as floats
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmtErrorf("directory cannot be empty")
	}

	if strings.TrimSpace(c.FilePrefix) == "" {
		return fmtErrorf("file_prefix cannot be empty")
	}

	if strings.ContainsAny(c.FilePrefix, `/\`) {
		return fmtErrorf("file_prefix cannot contain path separators: %s", c.FilePrefix)
	}

	if strings.HasPrefix(c.Extension, ".") {
		return fmtErrorf("extension should not start with dot: %s", c.Extension)
	}

	if strings.TrimSpace(c.LoggerName) == "" {
		return fmtErrorf("logger_name cannot be empty")
	}

	// The listing parser splits on " - ", so the name must not contain it
	if strings.Contains(c.LoggerName, " - ") {
		return fmtErrorf("logger_name cannot contain ' - ': %s", c.LoggerName)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	switch c.SanitizePolicy {
	case "line", "txt", "json", "raw":
	default:
		return fmtErrorf("invalid sanitize_policy: '%s' (use line, txt, json, or raw)", c.SanitizePolicy)
	}

	if c.ConsoleTarget != "stdout" && c.ConsoleTarget != "stderr" {
		return fmtErrorf("invalid console_target: '%s' (use stdout or stderr)", c.ConsoleTarget)
	}

	if c.PollIntervalMs <= 0 || c.JoinTimeoutMs <= 0 {
		return fmtErrorf("poll_interval_ms and join_timeout_ms must be positive")
	}

	if c.DrainTimeoutMs < 0 || c.SyncIntervalMs < 0 || c.HeartbeatIntervalS < 0 {
		return fmtErrorf("drain_timeout_ms, sync_interval_ms and heartbeat_interval_s cannot be negative")
	}

	if c.ReadTimeoutMs < 0 || c.WriteTimeoutMs < 0 || c.MaxBodyKB < 0 {
		return fmtErrorf("server timeouts and max_body_kb cannot be negative")
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// PollInterval returns the writer dequeue timeout
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// JoinTimeout returns the bound on Stop waiting for the writer
func (c *Config) JoinTimeout() time.Duration {
	return time.Duration(c.JoinTimeoutMs) * time.Millisecond
}

// DrainTimeout returns the drain bound, zero meaning unbounded
func (c *Config) DrainTimeout() time.Duration {
	return time.Duration(c.DrainTimeoutMs) * time.Millisecond
}
