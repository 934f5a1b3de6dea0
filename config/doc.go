// Package config resolves hierafacts settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. Environment variables (HIERAFACTS_HIERA_EXEC, HIERAFACTS_TIMEOUT, ...)
//  3. Local config (.hierafacts.yaml in the git root)
//  4. Global config (~/.config/hierafacts/config.yaml)
//  5. Built-in defaults
//
// Each resolved value remembers its Source, which `hierafacts config show`
// prints next to it.
//
//	resolver := config.NewResolver()
//	settings, err := config.Load(resolver.Resolve(flags))
//	if err != nil {
//	    return err
//	}
//	sess, err := hiera.NewSession(cfgPath, settings.HieraOptions()...)
//
// Command settings such as hiera_exec are split shell-style, so
// "bundle exec hiera" runs hiera through bundler.
package config
