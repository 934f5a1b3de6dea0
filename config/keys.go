package config

// Setting keys.
const (
	KeyHieraExec     = "hiera_exec"
	KeyBridgeExec    = "bridge_exec"
	KeyBackend       = "backend"
	KeyConcurrency   = "concurrency"
	KeyFailFast      = "fail_fast"
	KeyTimeout       = "timeout"
	KeyMergeArrays   = "merge_arrays"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyNotifyWebhook = "notify_webhook"
)

// Backends.
const (
	BackendCLI    = "cli"
	BackendBridge = "bridge"
)

// EnvPrefix is prepended to upper-cased keys for environment lookup, so
// "hiera_exec" is read from HIERAFACTS_HIERA_EXEC.
const EnvPrefix = "HIERAFACTS_"

// Config file names.
const (
	GlobalConfigDir  = "hierafacts"
	GlobalConfigFile = "config.yaml"
	LocalConfigName  = ".hierafacts.yaml"
)

// Defaults holds the built-in value of every key.
var Defaults = map[string]string{
	KeyHieraExec:     "hiera",
	KeyBridgeExec:    "hiera-json",
	KeyBackend:       BackendCLI,
	KeyConcurrency:   "1",
	KeyFailFast:      "false",
	KeyTimeout:       "60s",
	KeyMergeArrays:   "true",
	KeyLogLevel:      "warn",
	KeyLogFormat:     "text",
	KeyNotifyWebhook: "",
}

// ValidKeys lists every known key in display order.
var ValidKeys = []string{
	KeyHieraExec,
	KeyBridgeExec,
	KeyBackend,
	KeyConcurrency,
	KeyFailFast,
	KeyTimeout,
	KeyMergeArrays,
	KeyLogLevel,
	KeyLogFormat,
	KeyNotifyWebhook,
}

// IsValidKey reports whether key is a known setting.
func IsValidKey(key string) bool {
	for _, k := range ValidKeys {
		if k == key {
			return true
		}
	}
	return false
}
