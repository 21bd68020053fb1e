package runtime

import "errors"

var (
	ErrLoadTemplates = errors.New("runtime: failed to load notification templates")
	ErrLoadPolicy    = errors.New("runtime: failed to load role policy")
	ErrMetrics       = errors.New("runtime: failed to register metrics")
	ErrBeginTx       = errors.New("runtime: failed to begin transaction")
	ErrNoPool        = errors.New("runtime: no database pool")
)
