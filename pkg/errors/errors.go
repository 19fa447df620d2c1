package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// Mint errors
	ErrMintNotFound = errors.New("mint not found")
	ErrMintURLEmpty = errors.New("mint url is empty")

	// Probe errors
	ErrProbeFailed       = errors.New("probe failed")
	ErrProbeTimeout      = errors.New("probe timeout")
	ErrMalformedResponse = errors.New("malformed probe response")
	ErrNoLatencyData     = errors.New("no latency data available")

	// Ranking errors
	ErrUnknownColumn    = errors.New("unknown sort column")
	ErrUnknownCriterion = errors.New("unknown weight criterion")

	// Discovery errors
	ErrNoRelays        = errors.New("no relays configured")
	ErrDiscoveryFailed = errors.New("mint discovery failed")

	// Scheduler errors
	ErrSchedulerRunning    = errors.New("scheduler is already running")
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
)

// MintError represents a mint-related error
type MintError struct {
	URL string
	Err error
}

func (e *MintError) Error() string {
	return fmt.Sprintf("mint '%s': %v", e.URL, e.Err)
}

func (e *MintError) Unwrap() error {
	return e.Err
}

// ProbeError represents a probe-related error
type ProbeError struct {
	URL  string
	Kind string // "latency" or "keysets"
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s probe for '%s': %v", e.Kind, e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// RelayError represents a nostr relay error
type RelayError struct {
	Relay string
	Err   error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay '%s': %v", e.Relay, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}
