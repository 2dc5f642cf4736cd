package constant

const (
	SourceLive   = "live"
	SourceReview = "review"

	// SourceAll is only meaningful to the refresh trigger and expands to every
	// entry of Sources.
	SourceAll = "all"
)

// Sources lists the data source variants in refresh order.
// The slice must not be modified.
var Sources = []string{SourceLive, SourceReview}

const (
	TaskTypeManual = "manual"
	TaskTypeAuto   = "auto"

	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)
