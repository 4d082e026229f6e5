package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/voidshard/wasmbuild/internal/utils"
	"github.com/voidshard/wasmbuild/pkg/database"
	"github.com/voidshard/wasmbuild/pkg/queue"
	"github.com/voidshard/wasmbuild/pkg/structs"
	"github.com/voidshard/wasmbuild/pkg/toolchain"
)

type optsGeneral struct {
	Debug   bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogJSON bool `long:"log-json" env:"LOG_JSON" description:"Log as JSON rather than text"`
}

// setupLogging installs the default slog logger.
func (c *optsGeneral) setupLogging() {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, hopts)
	if c.LogJSON {
		handler = slog.NewJSONHandler(os.Stderr, hopts)
	}
	slog.SetDefault(slog.New(handler))
}

type optsDatabase struct {
	DatabaseURL       string `long:"database-url" env:"DATABASE_URL" description:"Database connection string (memory://, redis://, postgres://)"`
	DatabaseTLSCaCert string `long:"database-tls-ca-cert" env:"DATABASE_TLS_CA_CERT" description:"Path to CA certificate for redis"`
	DatabaseTLSCert   string `long:"database-tls-cert" env:"DATABASE_TLS_CERT" description:"Path to client certificate for redis"`
	DatabaseTLSKey    string `long:"database-tls-key" env:"DATABASE_TLS_KEY" description:"Path to client key for redis"`
}

func (c *optsDatabase) options() (*database.Options, error) {
	tlsCfg, err := utils.TLSConfig(c.DatabaseTLSCaCert, c.DatabaseTLSCert, c.DatabaseTLSKey)
	if err != nil {
		return nil, err
	}
	return &database.Options{URL: c.DatabaseURL, TLSConfig: tlsCfg}, nil
}

type optsQueue struct {
	QueueURL       string `long:"queue-url" env:"QUEUE_URL" description:"Queue connection string (memory://, redis://)"`
	QueueTLSCaCert string `long:"queue-tls-ca-cert" env:"QUEUE_TLS_CA_CERT" description:"Path to CA certificate for the queue"`
	QueueTLSCert   string `long:"queue-tls-cert" env:"QUEUE_TLS_CERT" description:"Path to client certificate for the queue"`
	QueueTLSKey    string `long:"queue-tls-key" env:"QUEUE_TLS_KEY" description:"Path to client key for the queue"`
}

func (c *optsQueue) options() (*queue.Options, error) {
	tlsCfg, err := utils.TLSConfig(c.QueueTLSCaCert, c.QueueTLSCert, c.QueueTLSKey)
	if err != nil {
		return nil, err
	}
	return &queue.Options{URL: c.QueueURL, TLSConfig: tlsCfg}, nil
}

// optsBuild configure the pipeline. Values set here override the config file.
type optsBuild struct {
	Config string `long:"config" env:"CONFIG" description:"YAML file of build options"`

	BuildRoot      string        `long:"build-root" env:"BUILD_ROOT" description:"Directory per-job workspaces are created under"`
	Workers        int           `long:"workers" env:"WORKERS" description:"Builds run at once by this process"`
	CompileTimeout time.Duration `long:"compile-timeout" env:"COMPILE_TIMEOUT" description:"Limit on the compile step"`
	BindgenTimeout time.Duration `long:"bindgen-timeout" env:"BINDGEN_TIMEOUT" description:"Limit on the binding generation step"`
	CargoHome      string        `long:"cargo-home" env:"CARGO_HOME" description:"Shared cargo registry cache"`
	ResultTTL      time.Duration `long:"result-ttl" env:"RESULT_TTL" description:"How long finished builds are kept"`

	DockerImage   string `long:"docker-image" env:"DOCKER_IMAGE" description:"Run toolchain steps in containers of this image"`
	DockerMemory  int64  `long:"docker-memory" env:"DOCKER_MEMORY" description:"Container memory limit in bytes"`
	DockerNetwork bool   `long:"docker-network" env:"DOCKER_NETWORK" description:"Allow containers network access"`
	DockerPull    bool   `long:"docker-pull" env:"DOCKER_PULL" description:"Pull the image before the first build"`
	DockerUser    string `long:"docker-user" env:"DOCKER_USER" description:"uid:gid to run containers as (default: ours)"`
}

// options reads the config file (if any) over base, then applies flags.
func (c *optsBuild) options(base *structs.Options) (*structs.Options, error) {
	if c.Config != "" {
		f, err := os.Open(c.Config)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(base); err != nil {
			return nil, err
		}
	}

	if c.BuildRoot != "" {
		base.BuildRoot = c.BuildRoot
	}
	if c.Workers > 0 {
		base.Workers = c.Workers
	}
	if c.CompileTimeout > 0 {
		base.CompileTimeout = c.CompileTimeout
	}
	if c.BindgenTimeout > 0 {
		base.BindgenTimeout = c.BindgenTimeout
	}
	if c.CargoHome != "" {
		base.CargoHome = c.CargoHome
	}
	if c.ResultTTL > 0 {
		base.ResultTTL = c.ResultTTL
	}
	base.SetDefaults()
	return base, nil
}

func (c *optsBuild) docker() *toolchain.DockerOptions {
	if c.DockerImage == "" {
		return nil
	}
	return &toolchain.DockerOptions{
		Image:   c.DockerImage,
		Memory:  c.DockerMemory,
		Network: c.DockerNetwork,
		Pull:    c.DockerPull,
		User:    c.DockerUser,
	}
}

// waitForSignal blocks until we're asked to stop.
func waitForSignal() {
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
}
