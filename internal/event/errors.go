package event

import "errors"

// Domain-specific errors for the event package.
var (
	ErrEmptyInput      = errors.New("input text is empty")
	ErrInvalidDecision = errors.New("decision must be confirm or cancel")
	ErrUnknownKind     = errors.New("unknown action kind")
)
