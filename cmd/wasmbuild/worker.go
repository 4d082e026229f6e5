package main

import (
	"log/slog"
	"net/http"

	"github.com/voidshard/wasmbuild/pkg/api"
	"github.com/voidshard/wasmbuild/pkg/metrics"
	"github.com/voidshard/wasmbuild/pkg/structs"
)

const (
	docWorker = `Run build workers against a shared queue`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsBuild

	MetricsAddr string `long:"metrics-addr" env:"METRICS_ADDR" description:"Serve prometheus metrics on this address"`
}

func (c *optsWorker) Execute(args []string) error {
	// This runs build workers only. Jobs arrive over a shared (redis) queue
	// from some `api` or `server` process.
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

	if c.MetricsAddr != "" {
		go func() {
			slog.Info("Serving metrics", "addr", c.MetricsAddr)
			if err := http.ListenAndServe(c.MetricsAddr, rec.Handler()); err != nil {
				slog.Error("Metrics server stopped", "err", err)
			}
		}()
	}

	waitForSignal()
	return nil
}
