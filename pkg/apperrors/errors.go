package apperrors

import "errors"

var (
	// ErrUnknownConnection is returned when a logical connection name has no
	// registered connection string.
	ErrUnknownConnection = errors.New("unknown connection name")

	// ErrUnrecognizedProvider is returned when neither the provider hint nor
	// the connection string matches a known dialect.
	ErrUnrecognizedProvider = errors.New("unrecognized database provider")

	// ErrSchemaRead is returned when the table collection itself cannot be
	// enumerated. The access context survives; a later pass may succeed.
	ErrSchemaRead = errors.New("schema read failed")

	// ErrCollectionUnsupported is returned by executors for dialects that
	// expose no native introspection query for a requested collection.
	ErrCollectionUnsupported = errors.New("schema collection not supported")
)
