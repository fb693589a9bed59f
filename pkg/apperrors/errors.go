package apperrors

import "errors"

var (
	ErrUnknownDialect     = errors.New("unknown database dialect")
	ErrMalformedURL       = errors.New("malformed connection URL")
	ErrConnection         = errors.New("database connection failed")
	ErrPoolTimeout        = errors.New("connection pool acquisition timed out")
	ErrQueryUnsafe        = errors.New("query rejected by read-only validator")
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedFeature = errors.New("feature not supported by this dialect")
)
