package resumes

import "errors"

var (
	ErrNotFound        = errors.New("resume not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrFileTooLarge    = errors.New("file exceeds the 10MB limit")
	ErrUnsupportedType = errors.New("only PDF, DOC and DOCX files are supported")
	ErrQuotaExceeded   = errors.New("monthly resume limit reached")
	ErrUnreadable      = errors.New("could not read text from the file")
	ErrTailorFailed    = errors.New("failed to tailor resume")
	ErrNoApplication   = errors.New("no job application found for this resume")
	ErrNoThumbnail     = errors.New("thumbnail not available")
)
