package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a courier does not recognize a tracking id. Expected
	// and non-fatal; adapters must never map transient failures to it.
	ErrNotFound = errors.New("tracking id not found")

	// ErrAlreadyWatched rejects adding an identity already on the watch-list.
	ErrAlreadyWatched = errors.New("package already watched")

	// ErrNotWatched rejects removing an identity that is not on the watch-list.
	ErrNotWatched = errors.New("package not watched")

	// ErrUnknownCourier means no adapter is registered under the given name.
	ErrUnknownCourier = errors.New("unknown courier")
)

// AlreadyDeliveredError rejects watching a shipment that is already terminal.
// It carries the live status so callers can report it instead.
type AlreadyDeliveredError struct {
	Status TrackingStatus
}

func (e *AlreadyDeliveredError) Error() string { return "package already delivered" }

// FetchError marks a transient courier fetch failure (network or markup).
// Sweeps skip the affected package and retry next cycle; one-shot lookups
// surface it as a soft failure for that courier only.
type FetchError struct {
	Courier string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.Courier, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
