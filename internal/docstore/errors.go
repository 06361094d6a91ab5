package docstore

import "errors"

var (
	// ErrInvalidIdentifier means the identifier has no root segment.
	ErrInvalidIdentifier = errors.New("invalid identifier format, want <root>/<path>")
	// ErrUnknownRoot means the identifier names a root that is not configured.
	ErrUnknownRoot = errors.New("unknown source root")
	// ErrNotFound means no file exists for the identifier.
	ErrNotFound = errors.New("document not found")
)
