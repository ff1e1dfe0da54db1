package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// OracleChanged is true when any oracle field differs. Oracle changes
	// require a restart to take effect; the watcher only logs them.
	OracleChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are relevant to a running server.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Oracle != new.Oracle {
		d.OracleChanged = true
	}

	return d
}
