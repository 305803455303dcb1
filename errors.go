package pptdom

import "errors"

// Errors returned by the document model. Callers should test for them with
// errors.Is since most are wrapped with additional context.
var (
	// ErrInvariantViolation is returned when a shape tree has no
	// identity-bearing node from which a fresh shape id can be derived.
	ErrInvariantViolation = errors.New("shape tree invariant violated")

	// ErrMalformedReference is returned when a chart formula contains no
	// parseable cell address.
	ErrMalformedReference = errors.New("malformed cell reference")

	// ErrInvalidResolution is returned for zero, negative or non-finite
	// pixel resolutions.
	ErrInvalidResolution = errors.New("invalid resolution")

	ErrPartNotFound         = errors.New("part not found")
	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrShapeRemoved is returned when mutating a shape that has already
	// been removed from its tree.
	ErrShapeRemoved = errors.New("shape has been removed")

	ErrNotChart         = errors.New("shape is not a chart")
	ErrUnsupportedMedia = errors.New("unsupported media type")

	errOutOfRange = errors.New("index out of range")
)
