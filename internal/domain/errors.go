package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMalformedResponse = errors.New("malformed response")
	ErrProviderFailure   = errors.New("provider failure")
	ErrInvalidTransition = errors.New("invalid slot transition")
	ErrEmptyPayload      = errors.New("empty payload")
)
