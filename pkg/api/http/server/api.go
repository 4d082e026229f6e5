package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/voidshard/wasmbuild/pkg/api"
	"github.com/voidshard/wasmbuild/pkg/api/http/common"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	wait = 30 * time.Second
)

type Server struct {
	addr       string
	static     string
	debug      bool
	metrics    http.Handler
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

// Router returns the http handler serving svc. ServeForever uses this, it's
// exposed so the routes can be mounted elsewhere.
func (s *Server) Router(svc api.API) http.Handler {
	s.svc = svc

	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, cors)
	if s.debug {
		slog.Debug("Debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.HandleFunc(common.API_RUST, s.Rust).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc(common.API_CPP, s.Cpp).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc(common.API_STATUS, s.Status).Methods(http.MethodGet)
	if s.metrics != nil {
		router.Handle(common.API_METRICS, s.metrics).Methods(http.MethodGet)
	}

	if s.static != "" {
		slog.Info("Serving static files", "dir", s.static)
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.static)))
	} else {
		router.HandleFunc("/", s.Home).Methods(http.MethodGet)
	}

	return router
}

func (s *Server) ServeForever(svc api.API) error {
	s.httpserver = &http.Server{
		Handler:      s.Router(svc),
		Addr:         s.addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", s.httpserver.Addr)
		if err := s.httpserver.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	signal.Notify(s.exit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.exit)

	select {
	case <-s.exit:
	case err := <-errs:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return s.httpserver.Shutdown(ctx)
}

func (s *Server) Rust(w http.ResponseWriter, r *http.Request) {
	in := &common.RustRequest{}
	if err := unmarshalJson(w, r, in); err != nil {
		return
	}
	if in.Source == "" {
		writeError(w, http.StatusBadRequest, "Rust source code (rs) is required")
		return
	}

	id, err := s.svc.Submit(r.Context(), &structs.BuildRequest{
		Language: structs.LangRust,
		Source:   in.Source,
		Manifest: in.Manifest,
	})
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	writeJson(w, http.StatusOK, &common.SubmitResponse{
		TaskID:  id,
		Message: fmt.Sprintf("Rust build accepted. Check progress at %s?%s=%s", common.API_STATUS, common.QUERY_TASKID, id),
	})
}

func (s *Server) Cpp(w http.ResponseWriter, r *http.Request) {
	in := &common.CppRequest{}
	if err := unmarshalJson(w, r, in); err != nil {
		return
	}
	if in.Source == "" {
		writeError(w, http.StatusBadRequest, "C/C++ source code (cpp) is required")
		return
	}

	id, err := s.svc.Submit(r.Context(), &structs.BuildRequest{
		Language: structs.LangCpp,
		Source:   in.Source,
	})
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	writeJson(w, http.StatusOK, &common.SubmitResponse{
		TaskID:  id,
		Message: fmt.Sprintf("C/C++ build accepted. Check progress at %s?%s=%s", common.API_STATUS, common.QUERY_TASKID, id),
		Warning: "C/C++ builds are not implemented yet, this build will fail",
	})
}

func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get(common.QUERY_TASKID)
	if id == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("taskid is required, eg. %s?%s=YOUR_ID", common.API_STATUS, common.QUERY_TASKID))
		return
	}

	resp, err := s.svc.Poll(r.Context(), id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	code, out := toStatusResponse(id, resp)
	writeJson(w, code, out)
}

// toStatusResponse maps a poll to the status code & body clients expect.
func toStatusResponse(id string, p *structs.PollResponse) (int, *common.StatusResponse) {
	switch p.Kind {
	case structs.PollUnknown:
		return http.StatusOK, &common.StatusResponse{
			Status:  common.STATUS_ERROR,
			Message: fmt.Sprintf("task id '%s' not found", id),
		}
	case structs.PollQueued:
		return http.StatusAccepted, &common.StatusResponse{
			TaskID:  id,
			Status:  common.STATUS_QUEUED,
			Message: "waiting in the queue",
		}
	case structs.PollRunning:
		return http.StatusAccepted, &common.StatusResponse{
			TaskID:  id,
			Status:  common.STATUS_STARTED,
			Message: "build in progress",
		}
	case structs.PollCompleted:
		return http.StatusOK, &common.StatusResponse{
			TaskID:     id,
			Status:     common.STATUS_COMPLETED,
			Message:    p.Result.Message,
			JSCode:     p.Result.JSGlue,
			WasmBase64: base64.StdEncoding.EncodeToString(p.Result.Wasm),
		}
	case structs.PollFailed:
		return http.StatusInternalServerError, &common.StatusResponse{
			TaskID:  id,
			Status:  common.STATUS_FAILED,
			Message: p.Result.Message,
			Details: p.Result.Details,
		}
	}
	return http.StatusInternalServerError, &common.StatusResponse{
		TaskID:  id,
		Status:  common.STATUS_ERROR,
		Message: "task finished but no result was stored",
	}
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(homePage))
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

// NewServer returns a server that will listen on addr. If static is set files
// are served from there instead of the built in home page. metrics, if not
// nil, is served on /metrics.
func NewServer(addr, static string, debug bool, metrics http.Handler) *Server {
	return &Server{
		static:  static,
		addr:    addr,
		debug:   debug,
		metrics: metrics,
		exit:    make(chan os.Signal, 1),
	}
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
    <meta name="description" content="WASM build server">
    <meta property="og:title" content="WASM Build Server">
    <meta property="og:description" content="Rust/C++ to WASM compilation service.">
    <title>WASM Server</title>
</head>
<body>
    <h1>WASM build server running</h1>
    <h2>Endpoints</h2>
    <ul>
        <li><code>POST /rust</code>: build Rust source, body <code>{"rs": "...", "toml": "..."}</code></li>
        <li><code>POST /c-c++</code>: build C/C++ source, body <code>{"cpp": "..."}</code></li>
        <li><code>GET /status?taskid=ID</code>: poll a build's status</li>
    </ul>
</body>
</html>
`
