package room

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidState       = errors.New("invalid state")
	ErrNoContentAvailable = errors.New("no content available")
	ErrValidation         = errors.New("validation error")
	ErrRegistryFull       = errors.New("no free room codes")

	ErrAlreadyJoined = fmt.Errorf("%w: already joined", ErrInvalidState)
)
