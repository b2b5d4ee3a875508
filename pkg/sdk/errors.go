package matchdex

import "github.com/kailas-cloud/matchdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrConfiguration  = domain.ErrConfiguration
	ErrIndexExecution = domain.ErrIndexExecution
)
