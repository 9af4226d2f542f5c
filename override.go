// FILE: lixenwraith/logsink/override.go
package logsink

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyOverride applies string key-value overrides to the configuration in place.
// Each override should be in the format "key=value". The result is validated.
//
// Example:
//
//	cfg := logsink.DefaultConfig()
//	err := cfg.ApplyOverride(
//	    "directory=/var/log/ingest",
//	    "queue_max_size=500",
//	    "enable_console=false",
//	)
func (c *Config) ApplyOverride(overrides ...string) error {
	staged := c.Clone()

	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(staged, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return combineConfigErrors(errors)
	}

	if err := staged.Validate(); err != nil {
		return err
	}

	*c = *staged
	return nil
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("logsink: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "logsink: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	// File sink
	case "directory":
		cfg.Directory = value
	case "file_prefix":
		cfg.FilePrefix = value
	case "extension":
		cfg.Extension = value
	case "logger_name":
		cfg.LoggerName = value
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitize_policy":
		cfg.SanitizePolicy = value

	// Queue and writer
	case "queue_max_size":
		return setInt(&cfg.QueueMaxSize, key, value)
	case "poll_interval_ms":
		return setInt(&cfg.PollIntervalMs, key, value)
	case "join_timeout_ms":
		return setInt(&cfg.JoinTimeoutMs, key, value)
	case "drain_timeout_ms":
		return setInt(&cfg.DrainTimeoutMs, key, value)
	case "sync_interval_ms":
		return setInt(&cfg.SyncIntervalMs, key, value)
	case "heartbeat_interval_s":
		return setInt(&cfg.HeartbeatIntervalS, key, value)

	// Console
	case "enable_console":
		return setBool(&cfg.EnableConsole, key, value)
	case "console_name":
		cfg.ConsoleName = value
	case "console_target":
		cfg.ConsoleTarget = value
	case "console_color":
		return setBool(&cfg.ConsoleColor, key, value)

	// Server
	case "http_address":
		cfg.HTTPAddress = value
	case "tcp_address":
		cfg.TCPAddress = value
	case "enable_metrics":
		return setBool(&cfg.EnableMetrics, key, value)
	case "read_timeout_ms":
		return setInt(&cfg.ReadTimeoutMs, key, value)
	case "write_timeout_ms":
		return setInt(&cfg.WriteTimeoutMs, key, value)
	case "max_body_kb":
		return setInt(&cfg.MaxBodyKB, key, value)

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}

func setInt(dst *int64, key, value string) error {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = intVal
	return nil
}

func setBool(dst *bool, key, value string) error {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = boolVal
	return nil
}
