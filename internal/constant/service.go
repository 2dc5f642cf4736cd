package constant

import "time"

const (
	// RecentTaskLimit is how many refresh tasks the status endpoint reports.
	RecentTaskLimit = 10

	RefreshMutexName = "mutex:refresh"

	// RefreshLockExpiry bounds a refresh run. The refresh mutex expires after
	// it and a task still marked running past it is considered abandoned.
	RefreshLockExpiry = 30 * time.Minute
)
