package domain

import "errors"

// ErrHostUnavailable is returned by the unguarded host accessor when no
// experimentation host is attached.
var ErrHostUnavailable = errors.New("experimentation host API not found")

// ErrFieldNotFound is returned by a host when the requested field is not set.
var ErrFieldNotFound = errors.New("host field not found")

// ErrInvalidTagType is returned when a tag argument is not a key-value object.
var ErrInvalidTagType = errors.New("expected tag to be an object")
