package generation

import "errors"

var (
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrNotFound           = errors.New("not found")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrNoActiveGeneration = errors.New("no active generation")
	ErrInvalidStage       = errors.New("invalid stage")
	ErrQueueFull          = errors.New("generation queue full")
	ErrTimeout            = errors.New("timeout")
)
