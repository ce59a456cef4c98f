// Package lock provides ports.RecordLocker implementations: a Redis lock
// shared by every API instance and an in-process lock for single-node runs.
package lock

import (
	"fmt"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
)

// ErrLockTimeout is returned when a lock could not be taken before the
// context ended. Another writer holds the record, so it matches
// domain.ErrConflict.
var ErrLockTimeout = fmt.Errorf("timed out waiting for record lock: %w", domain.ErrConflict)
