package registry

import "errors"

var (
	ErrRoomDoesNotExist  = errors.New("room does not exist")
	ErrUserAlreadyInside = errors.New("user already inside")
	ErrUserDoesNotExist  = errors.New("user does not exist")
)
