package main

import (
	"github.com/voidshard/wasmbuild/pkg/api"
	"github.com/voidshard/wasmbuild/pkg/api/http/server"
	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	docApi = `Run the HTTP API only`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsQueue

	Addr      string `long:"addr" env:"ADDR" description:"Address to bind to" default:"0.0.0.0:5000"`
	StaticDir string `long:"static-dir" env:"STATIC_DIR" default:"" description:"Serve static files from this directory"`
	Tidy      bool   `long:"tidy" env:"TIDY" description:"Also reap stuck jobs & evict old results"`
}

func (c *optsAPI) Execute(args []string) error {
	// This serves the HTTP API without running any builds, so the queue &
	// database must be shared with some `worker` processes.
	c.setupLogging()

	dbOpts, err := c.optsDatabase.options()
	if err != nil {
		return err
	}
	quOpts, err := c.optsQueue.options()
	if err != nil {
		return err
	}

	opts := api.OptionsClientDefault()
	if c.Tidy {
		opts.Build = structs.ServerDefaults()
	}
	rec := metrics.NewPrometheusRecorder(nil)
	opts.Recorder = rec

	svc, err := api.New(dbOpts, quOpts, opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	s := server.NewServer(c.Addr, c.StaticDir, c.Debug, rec.Handler())
	return s.ServeForever(svc)
}
