package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

const (
	defDockerMemory = 2 << 30
	cleanupTimeout  = 30 * time.Second
)

// DockerOptions configure the container each command runs in.
type DockerOptions struct {
	// Image must contain the toolchain (cargo, the wasm target & wasm-bindgen).
	Image string

	// Memory is a hard memory limit in bytes.
	Memory int64

	// Network enables networking (cargo needs it to fetch crates unless
	// they're vendored or pre-cached in the image).
	Network bool

	// Pull the image before the first run.
	Pull bool

	// User is the uid:gid commands run as. Defaults to our own, so files
	// written to the bind mounts stay ours.
	User string
}

func (o *DockerOptions) setDefaults() {
	if o.Memory <= 0 {
		o.Memory = defDockerMemory
	}
	if o.User == "" {
		o.User = fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
	}
}

// Docker runs each command in a throwaway container, with the command's
// working directory bind-mounted at the same path so absolute paths in the
// arguments stay valid.
type Docker struct {
	cli  *client.Client
	opts *DockerOptions

	pullOnce sync.Once
	pullErr  error
}

var _ Invoker = (*Docker)(nil)

// NewDocker connects to the docker daemon (configured from the environment)
// and checks it's reachable.
func NewDocker(opts *DockerOptions) (*Docker, error) {
	if opts == nil || opts.Image == "" {
		return nil, fmt.Errorf("%w docker image required", errors.ErrInvalidArg)
	}
	opts.setDefaults()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to docker daemon: %w", err)
	}

	return &Docker{cli: cli, opts: opts}, nil
}

func (d *Docker) Close() error {
	return d.cli.Close()
}

func (d *Docker) ensureImage(ctx context.Context) error {
	if !d.opts.Pull {
		return nil
	}
	d.pullOnce.Do(func() {
		slog.Info("Pulling image", "image", d.opts.Image)
		reader, err := d.cli.ImagePull(ctx, d.opts.Image, image.PullOptions{})
		if err != nil {
			d.pullErr = fmt.Errorf("failed to pull image: %w", err)
			return
		}
		defer reader.Close()
		// the pull isn't done until the body is drained
		_, d.pullErr = io.Copy(io.Discard, reader)
	})
	return d.pullErr
}

func (d *Docker) Run(ctx context.Context, c *Command) (*Result, error) {
	if c == nil || c.Name == "" {
		return nil, fmt.Errorf("%w no command", errors.ErrToolStart)
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if err := d.ensureImage(runCtx); err != nil {
		return nil, fmt.Errorf("%w %v", errors.ErrToolStart, err)
	}

	cfg, hostCfg := containerConfig(d.opts, c)
	resp, err := d.cli.ContainerCreate(runCtx, cfg, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("%w failed to create container: %v", errors.ErrToolStart, err)
	}
	id := resp.ID

	// removal must happen even if runCtx has expired
	defer func() {
		rmCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := d.cli.ContainerRemove(rmCtx, id, container.RemoveOptions{Force: true}); err != nil {
			slog.Error("Failed to remove container", "containerID", id, "error", err)
		}
	}()

	start := time.Now()
	if err := d.cli.ContainerStart(runCtx, id, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("%w failed to start container: %v", errors.ErrToolStart, err)
	}
	slog.Debug("Started container", "containerID", id, "cmd", c.Name)

	result := &Result{}
	statusCh, errCh := d.cli.ContainerWait(runCtx, id, container.WaitConditionNotRunning)
	select {
	case st := <-statusCh:
		result.ExitCode = int(st.StatusCode)
	case err := <-errCh:
		if runCtx.Err() == nil {
			return nil, fmt.Errorf("container wait failed: %w", err)
		}
		result.TimedOut = true
	case <-runCtx.Done():
		result.TimedOut = true
	}
	result.Duration = time.Since(start)

	if result.TimedOut {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("Container timed out", "containerID", id, "timeout", c.Timeout)
		killCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := d.cli.ContainerKill(killCtx, id, "KILL"); err != nil {
			slog.Error("Failed to kill container", "containerID", id, "error", err)
		}
		result.ExitCode = -1
	}

	logCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	stdout, stderr, err := d.logs(logCtx, id)
	if err != nil {
		slog.Error("Failed to read container logs", "containerID", id, "error", err)
	}
	result.Stdout = stdout
	result.Stderr = stderr

	return result, nil
}

func (d *Docker) logs(ctx context.Context, id string) (string, string, error) {
	rc, err := d.cli.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", err
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	_, err = stdcopy.StdCopy(&stdout, &stderr, rc)
	return stdout.String(), stderr.String(), err
}

// containerConfig builds the container & host config for a command.
// The working directory and CARGO_HOME (if the command sets one) are
// bind-mounted at their host paths.
func containerConfig(opts *DockerOptions, c *Command) (*container.Config, *container.HostConfig) {
	cfg := &container.Config{
		Image:      opts.Image,
		Cmd:        append([]string{c.Name}, c.Args...),
		WorkingDir: c.Dir,
		Env:        c.Env,
		User:       opts.User,
	}
	hostCfg := &container.HostConfig{
		Resources: container.Resources{
			Memory: opts.Memory,
		},
	}
	if c.Dir != "" {
		hostCfg.Mounts = append(hostCfg.Mounts, mount.Mount{Type: mount.TypeBind, Source: c.Dir, Target: c.Dir})
	}
	if home := envValue(c.Env, "CARGO_HOME"); home != "" && home != c.Dir {
		hostCfg.Mounts = append(hostCfg.Mounts, mount.Mount{Type: mount.TypeBind, Source: home, Target: home})
	}
	if !opts.Network {
		hostCfg.NetworkMode = container.NetworkMode("none")
	}
	return cfg, hostCfg
}

// envValue returns the last value set for key in env (KEY=value form).
func envValue(env []string, key string) string {
	value := ""
	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			value = v
		}
	}
	return value
}
