package session

import "errors"

var (
	ErrBusy            = errors.New("another operation is in progress")
	ErrNoModel         = errors.New("no model image to work on")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidPose     = errors.New("pose index out of range")
	ErrInvalidLayer    = errors.New("layer index out of range")
	ErrNotEditable     = errors.New("only garment layers above the base can be edited")
	ErrNoSavedSession  = errors.New("no saved session")
	ErrCorruptRecord   = errors.New("saved session is corrupt")
	ErrSessionNotFound = errors.New("session not found")
)

// GenerationError is a failed call to the image generation collaborator.
// Message is safe to show to the user.
type GenerationError struct {
	Op      string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// PersistenceError is a failed save, load or delete of the session record
type PersistenceError struct {
	Op      string
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
