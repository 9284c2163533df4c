package models

// GlobalConfig holds tool-wide settings read from .perfmetrics.yaml via Viper.
// Each field names the configuration key it is loaded from.
type GlobalConfig struct {
	LogLevel     string // log.level
	EventLogPath string // log.events; empty disables run history
	ConstPrefix  string // check.const_prefix
	OriginTag    string // reconcile.origin
	OutputIndent int    // output.indent
}
