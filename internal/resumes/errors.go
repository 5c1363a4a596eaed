package resumes

import "errors"

var (
	ErrNotFound       = errors.New("resume not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidSection = errors.New("unknown resume section")
)
