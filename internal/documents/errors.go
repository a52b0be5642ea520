package documents

import "errors"

var (
	ErrNotFound        = errors.New("document not found")
	ErrForbidden       = errors.New("not the document owner")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidInput    = errors.New("invalid input")
)
