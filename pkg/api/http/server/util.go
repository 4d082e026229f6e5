package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/voidshard/wasmbuild/pkg/api/http/common"
	ie "github.com/voidshard/wasmbuild/pkg/errors"
)

const (
	maxBody = 10 << 20
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			ie.ErrInvalidArg,
			ie.ErrNoSource,
			ie.ErrNotSupported,
			ie.ErrInvalidManifest,
		},
		http.StatusServiceUnavailable: []error{
			ie.ErrQueueClosed,
		},
	}
)

// mapError returns the http status code for a given error, or
// http.StatusInternalServerError if the error is not recognised.
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if errors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// unmarshalJson reads the body of a request and attempts to unmarshal it into the given object.
// This function write an error to the writer if an error occurs, and returns the error.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		writeError(w, http.StatusBadRequest, "no body")
		return fmt.Errorf("no body")
	}
	d := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	d.DisallowUnknownFields() // catch unwanted fields

	err := d.Decode(obj)
	if err != nil {
		// bad JSON or unrecognized json field
		writeError(w, http.StatusBadRequest, err.Error())
		return fmt.Errorf("bad json: %v", err)
	}

	return nil
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJson(w, code, &common.ErrorResponse{Error: msg})
}

func writeJson(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		slog.Error("Failed to write response", "err", err)
	}
}
