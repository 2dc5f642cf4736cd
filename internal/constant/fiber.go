package constant

const (
	ContextKeyRequestID = "requestid"

	AdminAuthorizationRealm = "Bearer"
)

// TimeLayout formats timestamps in administration responses.
const TimeLayout = "2006-01-02T15:04:05Z07:00"
