package hgweb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os/exec"
	"strings"
)

// Process supervises an `hg serve --web-conf` child that serves every
// repository named by the hgweb config.
type Process struct {
	Bin        string
	ConfigPath string
	Addr       string
	Prefix     string
	Logger     *slog.Logger
}

// URL is the base URL the child listens on.
func (p *Process) URL() *url.URL {
	return &url.URL{Scheme: "http", Host: p.Addr}
}

func (p *Process) args() ([]string, error) {
	host, port, err := net.SplitHostPort(p.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid hg listen address %q: %w", p.Addr, err)
	}
	args := []string{"serve", "--web-conf", p.ConfigPath, "--address", host, "--port", port}
	if prefix := strings.Trim(p.Prefix, "/"); prefix != "" {
		args = append(args, "--prefix", prefix)
	}
	return args, nil
}

// Run starts the child and blocks until it exits. Cancelling ctx kills the
// child; that exit is not reported as an error.
func (p *Process) Run(ctx context.Context) error {
	args, err := p.args()
	if err != nil {
		return err
	}

	bin := p.Bin
	if bin == "" {
		bin = "hg"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &logWriter{logger: p.Logger, stream: "stdout"}
	cmd.Stderr = &logWriter{logger: p.Logger, stream: "stderr"}

	p.Logger.Info("starting hg serve", "addr", p.Addr, "config", p.ConfigPath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start hg serve: %w", err)
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("hg serve exited: %w", err)
	}
	if err != nil {
		return fmt.Errorf("hg serve: %w", err)
	}
	return fmt.Errorf("hg serve exited unexpectedly")
}

// logWriter turns child process output into log records, one per line.
type logWriter struct {
	logger *slog.Logger
	stream string
}

func (w *logWriter) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			w.logger.Info("hg serve", "stream", w.stream, "line", line)
		}
	}
	return len(b), nil
}
