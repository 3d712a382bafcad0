package custom_error

import "errors"

var (
	ErrLocationNotFound  = errors.New("location not found")
	ErrSplitterNotFound  = errors.New("splitter not found")
	ErrDuplicateLocation = errors.New("location id already exists")
	ErrDuplicateSplitter = errors.New("splitter id already exists in location")
	ErrVersionConflict   = errors.New("data changed since it was read")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrStorageDisabled   = errors.New("document storage is not configured")
)

// IncorrectPasswordMessage is shown to the user when the delete confirmation fails.
const IncorrectPasswordMessage = "Incorrect password. Please try again."

// ErrInvalidInput marks payloads rejected before they reach a backend.
var ErrInvalidInput = errors.New("invalid input")
