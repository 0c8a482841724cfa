package core

import (
	"errors"
	"time"
)

// Error taxonomy surfaced to the control surface. Busy and transport
// failures are expected operational noise; nothing here is fatal to the
// process.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrBusy       = errors.New("another operation is in progress")
)

// MinInterval is the smallest schedule granularity accepted for backup and
// connectivity-check intervals.
const MinInterval = 15 * time.Minute

// FailureThreshold is how many consecutive failed runs flag a console for
// operator attention. Auth and transport failures share the counter.
const FailureThreshold = 2
