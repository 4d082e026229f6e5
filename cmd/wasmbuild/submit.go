package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voidshard/wasmbuild/pkg/api/http/client"
	"github.com/voidshard/wasmbuild/pkg/api/http/common"
)

const (
	docSubmit = `Submit a source file to a server & wait for the result`
)

type optsSubmit struct {
	optsGeneral

	Server   string        `long:"server" env:"SERVER" description:"Server address" default:"http://localhost:5000"`
	Manifest string        `long:"manifest" description:"Cargo.toml to build with (rust only)"`
	OutDir   string        `long:"out-dir" description:"Write the js glue & wasm module here" default:"."`
	Timeout  time.Duration `long:"timeout" description:"Give up waiting after this long" default:"10m"`
	Interval time.Duration `long:"interval" description:"Poll interval" default:"2s"`

	Args struct {
		Source string `positional-arg-name:"source" description:".rs, .c or .cpp file" required:"true"`
	} `positional-args:"true"`
}

func (c *optsSubmit) Execute(args []string) error {
	c.setupLogging()

	src, err := os.ReadFile(c.Args.Source)
	if err != nil {
		return err
	}

	cli, err := client.New(c.Server)
	if err != nil {
		return err
	}
	cli.PollInterval = c.Interval

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	var ack *common.SubmitResponse
	switch strings.ToLower(filepath.Ext(c.Args.Source)) {
	case ".rs":
		manifest := ""
		if c.Manifest != "" {
			data, err := os.ReadFile(c.Manifest)
			if err != nil {
				return err
			}
			manifest = string(data)
		}
		ack, err = cli.SubmitRust(ctx, string(src), manifest)
	case ".c", ".cc", ".cpp", ".cxx":
		ack, err = cli.SubmitCpp(ctx, string(src))
	default:
		return fmt.Errorf("unrecognised source file extension %q", filepath.Ext(c.Args.Source))
	}
	if err != nil {
		return err
	}
	slog.Info("Build submitted", "jobID", ack.TaskID, "warning", ack.Warning)

	st, err := cli.Wait(ctx, ack.TaskID)
	if err != nil {
		return err
	}
	if st.Status != common.STATUS_COMPLETED {
		fmt.Fprintln(os.Stderr, st.Details)
		return fmt.Errorf("build %s %s: %s", ack.TaskID, st.Status, st.Message)
	}

	wasm, err := client.Wasm(st)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(c.Args.Source), filepath.Ext(c.Args.Source))
	if err := os.MkdirAll(c.OutDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.OutDir, name+".js"), []byte(st.JSCode), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.OutDir, name+"_bg.wasm"), wasm, 0644); err != nil {
		return err
	}
	slog.Info("Build complete", "jobID", ack.TaskID, "outDir", c.OutDir)
	return nil
}
