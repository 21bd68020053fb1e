package audit

import "errors"

var (
	ErrInvalidEntry        = errors.New("invalid audit entry")
	ErrStorageNotAvailable = errors.New("audit storage is unavailable")
	ErrStageFailed         = errors.New("failed to stage audit entry")
	ErrListFailed          = errors.New("failed to list audit entries")
)
