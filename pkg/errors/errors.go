package errors

import "errors"

var (
	// ErrConfiguration a required credential or setting is missing
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstreamModel the language model call failed or returned unusable content
	ErrUpstreamModel = errors.New("language model unavailable")

	// ErrSourceUnavailable a catalog or grade source could not be reached or parsed
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrValidation the client request is malformed
	ErrValidation = errors.New("invalid request")

	// ErrInternal an unexpected fault inside the pipeline
	ErrInternal = errors.New("internal error")
)
