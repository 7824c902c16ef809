package errors

import "errors"

var (
	ErrCorruptStore = errors.New("booking store file is not a readable spreadsheet")

	ErrTooManyColumns = errors.New("booking store exceeds the spreadsheet column limit")

	ErrStoreUnavailable = errors.New("booking store directory is not available")
)
