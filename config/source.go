package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates the value came from
	// ~/.config/hierafacts/config.yaml.
	SourceGlobal Source = "global"

	// SourceLocal indicates the value came from .hierafacts.yaml in the
	// git root.
	SourceLocal Source = "local"

	// SourceEnv indicates the value came from a HIERAFACTS_* variable.
	SourceEnv Source = "env"

	// SourceFlag indicates the value was set via command-line flag.
	SourceFlag Source = "flag"
)
