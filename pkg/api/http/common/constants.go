package common

const (
	// API_RUST queues a Rust build
	API_RUST = "/rust"

	// API_CPP queues a C/C++ build
	API_CPP = "/c-c++"

	// API_STATUS is polled with ?taskid=ID for a build's progress & result
	API_STATUS = "/status"

	// API_HEALTH reports the server is up
	API_HEALTH = "/healthz"

	// API_METRICS serves prometheus metrics
	API_METRICS = "/metrics"

	// QUERY_TASKID is the query parameter naming the job on API_STATUS
	QUERY_TASKID = "taskid"
)

// Status values returned by API_STATUS.
const (
	STATUS_QUEUED    = "queued"
	STATUS_STARTED   = "started"
	STATUS_COMPLETED = "completed"
	STATUS_FAILED    = "failed"
	STATUS_ERROR     = "error"
)
