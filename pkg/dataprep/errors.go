package dataprep

import "errors"

// Sentinel errors for this package. Table and calendar library errors are
// wrapped, not replaced, so callers can still inspect them.
var (
	ErrColumnNotFound   = errors.New("dataprep: column not found")
	ErrDuplicateColumn  = errors.New("dataprep: column already exists")
	ErrMissingField     = errors.New("dataprep: record field missing")
	ErrInvalidField     = errors.New("dataprep: record field is not an integer")
	ErrInvalidDate      = errors.New("dataprep: invalid calendar date")
	ErrUnsupportedYear  = errors.New("dataprep: year outside calendar range")
	ErrInvalidThreshold = errors.New("dataprep: invalid importance threshold")
	ErrIndexOutOfRange  = errors.New("dataprep: feature index out of range")
	ErrNoColumns        = errors.New("dataprep: encoding leaves no columns")
)
