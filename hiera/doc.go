// Package hiera resolves hiera variables into typed values.
//
// The hiera command line prints untyped text and cannot report whether a
// key is a hash, an array, or a scalar. A Session probes each variable in
// up to three modes and reconciles the renderings:
//
//  1. mapping mode (hiera -h): success means a mapping, or undefined when
//     the output is the sentinel "nil"
//  2. sequence mode (hiera -a): failure means the variable is undefined
//  3. scalar mode: failure here is a store protocol violation
//
// The sequence and scalar renderings are then handed to an ordered set of
// disambiguation rules. When no rule can decide, resolution fails with
// ErrAmbiguous rather than guessing; the classic case is the string "[]"
// versus an empty array.
//
// Core types:
//   - Session: config path, scope, and namespace for one series of lookups
//   - Value: Undefined, Scalar, Sequence, or Mapping
//   - Batch: per-variable results of ResolveAll
//   - Bridge: single-process JSON backend with the same Resolver interface
//   - VarError: failure attributed to one variable and stage
//
// Example usage:
//
//	sess, err := hiera.NewSession("hiera.yaml",
//	    hiera.WithScope(map[string]string{"environment": "production"}),
//	    hiera.WithConcurrency(4),
//	)
//	if err != nil {
//	    return err
//	}
//	v, err := sess.Resolve(ctx, "ntp_servers")
//	if errors.Is(err, hiera.ErrAmbiguous) {
//	    // the data itself must change; retrying will not help
//	}
package hiera
