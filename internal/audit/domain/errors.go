package domain

import (
	"github.com/allisson/phivault/internal/errors"
)

// ErrListingUnsupported is returned by sinks that cannot read events back.
var ErrListingUnsupported = errors.Wrap(errors.ErrInvalidInput, "audit sink does not support listing")
