package common

// RustRequest is the body of a POST to API_RUST.
type RustRequest struct {
	// Source is the contents of src/lib.rs
	Source string `json:"rs"`

	// Manifest is an optional Cargo.toml
	Manifest string `json:"toml,omitempty"`
}

// CppRequest is the body of a POST to API_CPP.
type CppRequest struct {
	Source string `json:"cpp"`
}

// SubmitResponse acknowledges a queued build.
type SubmitResponse struct {
	TaskID  string `json:"taskid"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

// StatusResponse is what API_STATUS returns. Which fields are set depends on
// Status: JSCode & WasmBase64 for completed builds, Details for failed ones.
type StatusResponse struct {
	TaskID     string `json:"taskid,omitempty"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	JSCode     string `json:"js_code,omitempty"`
	WasmBase64 string `json:"wasm_base64,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Terminal is true once polling again will return the same answer.
func (s *StatusResponse) Terminal() bool {
	return s.Status != STATUS_QUEUED && s.Status != STATUS_STARTED
}

// ErrorResponse is returned with 4xx codes for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
