package structs

// Job is one build request's full lifecycle.
type Job struct {
	// ID is a UUID assigned on submission
	ID string `json:"id"`

	Request BuildRequest `json:"request"`

	// State moves QUEUED -> RUNNING -> FINISHED and never backwards
	State State `json:"state"`

	// Result is set exactly once, when State becomes FINISHED
	Result *BuildResult `json:"result,omitempty"`

	// ETag changes on every update
	ETag string `json:"etag"`

	// unix time in seconds
	CreatedAt  int64 `json:"created_at"`
	StartedAt  int64 `json:"started_at,omitempty"`
	FinishedAt int64 `json:"finished_at,omitempty"`
}

// Copy returns a deep copy of the job (snapshot semantics for readers).
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.Result = j.Result.Copy()
	return &out
}
