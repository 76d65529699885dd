package users

import "errors"

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidPlan = errors.New("invalid plan")
)
