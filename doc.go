// Package hierafacts resolves variables from a hiera hierarchy into typed
// values.
//
// The hiera command line tool only prints untyped text and cannot say
// whether a key holds a hash, an array, or a scalar. This module probes a
// key in hash, array, and scalar mode and reconciles the three renderings
// into one typed value, or fails loudly when the evidence is ambiguous.
//
// The package is organized into subpackages by concern:
//
//   - hiera: sessions, the three-mode probe, type disambiguation, batches,
//     and the single-process JSON bridge backend
//   - facts: request parsing, scope merging, and fact publishing
//   - config: layered tool settings (defaults, global, local, env, flags)
//   - errors: user-facing error messages and suggestions
//   - notify: resolution event notifications (slog, webhook)
//   - testutil: scripted fake stores and test helpers
//
// The root package holds the process execution primitives every backend
// uses: CommandRunner, ExecRunner, and MockRunner.
//
// # Quick Start
//
//	sess, err := hiera.NewSession("/etc/puppetlabs/hiera.yaml",
//	    hiera.WithScope(map[string]string{"hostname": "web01"}),
//	    hiera.WithNamespace("postgres::server"),
//	)
//	if err != nil {
//	    return err
//	}
//	batch, err := sess.ResolveAll(ctx, []string{"port", "listen_addresses"})
//
// See individual package documentation for detailed usage.
package hierafacts
