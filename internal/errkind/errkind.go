// Package errkind declares the error categories shared by every textsynth
// package. Component errors wrap one of these sentinels so callers can
// classify any failure with errors.Is, and the root package re-exports them.
package errkind

import "errors"

var (
	// Configuration marks missing or empty inputs and malformed tables.
	Configuration = errors.New("configuration error")

	// Load marks fonts that cannot be used (corrupt or variable).
	Load = errors.New("load error")

	// MissingCoverage marks a character no font can render.
	MissingCoverage = errors.New("missing glyph coverage")

	// InvalidArgument marks bad parameters rejected before any work begins.
	InvalidArgument = errors.New("invalid argument")
)
