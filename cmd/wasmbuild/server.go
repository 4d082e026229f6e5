package main

import (
	"log/slog"

	"github.com/voidshard/wasmbuild/pkg/api"
	"github.com/voidshard/wasmbuild/pkg/api/http/server"
	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	docServer = `Run the HTTP API and build workers in one process`
)

type optsServer struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsBuild

	Addr      string `long:"addr" env:"ADDR" description:"Address to bind to" default:"0.0.0.0:5000"`
	StaticDir string `long:"static-dir" env:"STATIC_DIR" default:"" description:"Serve static files from this directory"`
}

func (c *optsServer) Execute(args []string) error {
	// Everything in one process; with the default (memory) database & queue
	// this needs nothing else running. Point it at redis / postgres to share
	// load with `worker` processes.
	c.setupLogging()

	dbOpts, err := c.optsDatabase.options()
	if err != nil {
		return err
	}
	quOpts, err := c.optsQueue.options()
	if err != nil {
		return err
	}
	build, err := c.optsBuild.options(structs.ServerDefaults())
	if err != nil {
		return err
	}

	rec := metrics.NewPrometheusRecorder(nil)
	svc, err := api.New(dbOpts, quOpts, &api.Options{
		Build:      build,
		RunWorkers: true,
		Docker:     c.docker(),
		Recorder:   rec,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	slog.Info("Starting server", "addr", c.Addr, "workers", build.Workers)
	s := server.NewServer(c.Addr, c.StaticDir, c.Debug, rec.Handler())
	return s.ServeForever(svc)
}
