package errors

import (
	"context"
	"errors"

	"github.com/randalmurphal/hierafacts/hiera"
)

// IsDataError reports whether err comes from the hiera data itself, so
// retrying without changing the data cannot help.
func IsDataError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, hiera.ErrAmbiguous) ||
		errors.Is(err, hiera.ErrInconsistentStore) ||
		errors.Is(err, hiera.ErrDecode)
}

// IsStoreError reports whether err comes from running the store.
func IsStoreError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, hiera.ErrStoreInvocation) || errors.Is(err, ErrExecutableNotFound)
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsRequestError reports whether err is a malformed request or a missing
// config file.
func IsRequestError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, hiera.ErrInvalidRequest) || errors.Is(err, ErrConfigNotFound)
}
