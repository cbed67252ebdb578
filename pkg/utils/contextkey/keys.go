package contextkey

// Key is the type of every context key set by this module.
type Key string

const (
	TraceID   Key = "trace_id"
	RequestID Key = "request_id"
	UserID    Key = "user_id"
	JobID     Key = "job_id"
)
