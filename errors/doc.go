// Package errors provides CLI error patterns with user-friendly messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - ErrorMessenger: Interface for customizing error messages
//
// WrapResolveError maps each hiera resolution failure (ambiguous type,
// inconsistent store, store invocation, decode, invalid request) and
// batch-level failures (timeout, several variables failed) to a message
// and a suggestion:
//
//	batch, err := sess.ResolveAll(ctx, names)
//	if err == nil {
//	    err = batch.Err()
//	}
//	if err != nil {
//	    return errors.WrapResolveError(err)
//	}
//
// Predicates classify failures for exit codes and retries:
//
//	if errors.IsDataError(err) {
//	    // the hiera data must change
//	}
package errors
