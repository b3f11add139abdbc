package hgweb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner performs repository operations that need Mercurial itself.
type Runner interface {
	Init(ctx context.Context, path string) error
}

// ExecRunner shells out to the hg binary.
type ExecRunner struct {
	Bin string
}

func (r ExecRunner) Init(ctx context.Context, path string) error {
	out, err := exec.CommandContext(ctx, r.bin(), "init", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("hg init %s: %w: %s", path, err, bytes.TrimSpace(out))
	}
	return nil
}

func (r ExecRunner) bin() string {
	if r.Bin == "" {
		return "hg"
	}
	return r.Bin
}
