package synth

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNoAudio indicates a transport finished without producing audio.
	ErrNoAudio = errors.New("no audio was received")

	// ErrEmotionUnsupported indicates a transport cannot express styles.
	ErrEmotionUnsupported = errors.New("transport does not support express-as styles")

	// ErrNoTransports indicates an engine was built without transports.
	ErrNoTransports = errors.New("no synthesis transports configured")

	// ErrEmptyText indicates a request without text.
	ErrEmptyText = errors.New("text cannot be empty")
)

// Guidance is attached to terminal failures.
const Guidance = "check network egress (proxy, VPN or firewall changes) and try again, " +
	"or switch to an alternate synthesis provider"

var authFailureRE = regexp.MustCompile(
	`(?i)\b(401|403)\b|unauthori[sz]ed|forbidden|invalid response|no audio (was )?received`)

// IsAuthFailure reports whether err looks like expired or rejected
// credentials.
func IsAuthFailure(err error) bool {
	return err != nil && authFailureRE.MatchString(err.Error())
}

// SynthesisError is the terminal failure of a synthesis call, returned once
// every fallback is exhausted.
type SynthesisError struct {
	Voice    string
	Path     string
	Attempts int
	Err      error
	Guidance string
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for voice %s after %d attempts: %v; %s",
		e.Voice, e.Attempts, e.Err, e.Guidance)
}

// Unwrap returns the last underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Err
}
