package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so call sites can apply the right
// policy: propagate, swallow-and-log, or substitute a fallback.
var (
	// TagValidation marks bad input (e.g. empty title). Reported to the
	// caller, no state change.
	TagValidation = goerr.NewTag("validation")

	// TagNotFound marks operations on an unknown ID
	TagNotFound = goerr.NewTag("not_found")

	// TagStorage marks adapter I/O failures, carrying the backend message
	TagStorage = goerr.NewTag("storage")

	// TagAssistant marks extraction round-trip failures. Never propagated
	// out of SendMessage.
	TagAssistant = goerr.NewTag("assistant")
)

// IsValidation reports whether err is tagged as a validation failure
func IsValidation(err error) bool {
	return goerr.HasTag(err, TagValidation)
}

// IsNotFound reports whether err is tagged as a missing-ID failure
func IsNotFound(err error) bool {
	return goerr.HasTag(err, TagNotFound)
}

// IsStorage reports whether err is tagged as an adapter I/O failure
func IsStorage(err error) bool {
	return goerr.HasTag(err, TagStorage)
}

// IsAssistant reports whether err is tagged as an assistant failure
func IsAssistant(err error) bool {
	return goerr.HasTag(err, TagAssistant)
}
