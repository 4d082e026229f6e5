package structs

// PollKind is what a client polling for a job should make of it.
type PollKind string

const (
	PollUnknown PollKind = "UNKNOWN"
	PollQueued  PollKind = "QUEUED"
	PollRunning PollKind = "RUNNING"

	PollCompleted PollKind = "COMPLETED"
	PollFailed    PollKind = "FAILED"

	// PollMissingResult is a job that reports FINISHED but has no result stored.
	PollMissingResult PollKind = "MISSING_RESULT"
)

// PollResponse is the read-only view of a job for polling clients.
type PollResponse struct {
	Kind   PollKind     `json:"kind"`
	JobID  string       `json:"job_id"`
	Result *BuildResult `json:"result,omitempty"`
}

// InProgress is true for QUEUED and RUNNING; clients should poll again.
func (p *PollResponse) InProgress() bool {
	return p.Kind == PollQueued || p.Kind == PollRunning
}

// NewPollResponse maps a job snapshot (or nil for unknown ids) to a PollResponse.
func NewPollResponse(id string, j *Job) *PollResponse {
	if j == nil {
		return &PollResponse{Kind: PollUnknown, JobID: id}
	}
	resp := &PollResponse{JobID: j.ID}
	switch j.State {
	case QUEUED:
		resp.Kind = PollQueued
	case RUNNING:
		resp.Kind = PollRunning
	case FINISHED:
		if j.Result == nil {
			resp.Kind = PollMissingResult
			return resp
		}
		resp.Result = j.Result.Copy()
		switch j.Result.Status {
		case COMPLETED:
			resp.Kind = PollCompleted
		case FAILED:
			resp.Kind = PollFailed
		default:
			resp.Kind = PollMissingResult
			resp.Result = nil
		}
	default:
		resp.Kind = PollMissingResult
	}
	return resp
}
