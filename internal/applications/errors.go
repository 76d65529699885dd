package applications

import "errors"

var (
	ErrNotFound       = errors.New("job application not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrResumeNotFound = errors.New("resume not found")
)
