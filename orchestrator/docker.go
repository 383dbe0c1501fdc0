package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

// ContainerLauncher runs the target inside a fresh container per invocation.
// The output directory is bind-mounted at the same path so request files and
// result artifacts cross the boundary unchanged.
type ContainerLauncher struct {
	log   *slog.Logger
	image string
}

// NewContainerLauncher creates a launcher that runs the target in image.
func NewContainerLauncher(log *slog.Logger, image string) *ContainerLauncher {
	return &ContainerLauncher{log: log, image: image}
}

// Launch creates and starts one container for the run. TTY mode keeps
// stdout and stderr interleaved in a single stream, matching the host
// launcher's capture semantics.
func (l *ContainerLauncher) Launch(ctx context.Context, spec LaunchSpec) (Process, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: spec.OutputDir,
				Target: spec.OutputDir,
			},
		},
		Init: &initTrue,
	}
	containerCfg := &container.Config{
		Image:  l.image,
		Cmd:    append([]string{spec.Target}, spec.Args...),
		Tty:    true,
		Labels: map[string]string{"loc-acceptor": "true"},
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("creating container: %w", err)
	}

	if _, err := cli.ContainerStart(ctx, createResp.ID, client.ContainerStartOptions{}); err != nil {
		cli.ContainerRemove(context.Background(), createResp.ID, client.ContainerRemoveOptions{Force: true})
		cli.Close()
		return nil, fmt.Errorf("starting container: %w", err)
	}

	l.log.Debug("Container started", "image", l.image, "container_id", createResp.ID)
	return &containerProcess{
		log:     l.log,
		cli:     cli,
		id:      createResp.ID,
		spec:    spec,
		capture: newOutputCapture(),
	}, nil
}

type containerProcess struct {
	log     *slog.Logger
	cli     *client.Client
	id      string
	spec    LaunchSpec
	capture *outputCapture

	fetchOnce sync.Once
}

// Wait blocks until the container stops and returns its exit code.
func (p *containerProcess) Wait() (int, error) {
	waitRes := p.cli.ContainerWait(context.Background(), p.id, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitRes.Error:
			if err != nil {
				return -1, fmt.Errorf("waiting for container: %w", err)
			}
			// nil means nothing failed on this channel; keep waiting
		case status := <-waitRes.Result:
			return int(status.StatusCode), nil
		}
	}
}

// Terminate sends SIGTERM to the container's init process.
func (p *containerProcess) Terminate() error {
	_, err := p.cli.ContainerKill(context.Background(), p.id, client.ContainerKillOptions{Signal: "SIGTERM"})
	return err
}

// Kill sends SIGKILL to the container's init process.
func (p *containerProcess) Kill() error {
	_, err := p.cli.ContainerKill(context.Background(), p.id, client.ContainerKillOptions{Signal: "SIGKILL"})
	return err
}

// Output fetches the container log on first use and returns the captured
// lines. With TTY mode the log is a single plain-text stream.
func (p *containerProcess) Output() []string {
	p.fetchOnce.Do(func() {
		logReader, err := p.cli.ContainerLogs(context.Background(), p.id, client.ContainerLogsOptions{
			ShowStdout: true,
			ShowStderr: true,
		})
		if err != nil {
			p.log.Debug("Fetching container logs failed", "container_id", p.id, "err", err)
			return
		}
		defer logReader.Close()
		if err := captureLines(logReader, p.capture, p.spec.OnLine); err != nil {
			p.log.Debug("Reading container logs failed", "container_id", p.id, "err", err)
		}
	})
	return p.capture.Lines()
}

// Close force-removes the container and releases the client.
func (p *containerProcess) Close() error {
	_, err := p.cli.ContainerRemove(context.Background(), p.id, client.ContainerRemoveOptions{Force: true})
	if cerr := p.cli.Close(); err == nil {
		err = cerr
	}
	return err
}
