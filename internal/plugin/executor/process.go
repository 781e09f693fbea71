package executor

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// ProcessRunner starts provider processes. Tests substitute a fake.
type ProcessRunner interface {
	// Run executes path with args, feeding stdin, and returns everything the
	// process wrote to stdout and stderr.
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner runs processes with os/exec.
type RealProcessRunner struct{}

// NewRealProcessRunner creates a RealProcessRunner.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}

// Run executes a real external process. Stderr is captured even on success so
// providers can log warnings without breaking the JSON on stdout.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- provider path comes from user configuration
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return stdout.Bytes(), stderr.Bytes(), err
}
