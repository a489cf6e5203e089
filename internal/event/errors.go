package event

import "errors"

// Domain errors
var (
	ErrEventNotFound = errors.New("event not found")
	ErrValidation    = errors.New("validation failed")
	ErrUploadFailed  = errors.New("image upload failed")
)
