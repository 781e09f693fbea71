package executor

import (
	"context"
	"errors"
	"io"
)

// call records one provider invocation.
type call struct {
	path string
	args []string
}

// fakeRunner stands in for provider processes. handle answers each call; a nil
// handle blocks until the context ends.
type fakeRunner struct {
	handle func(args []string, stdin io.Reader) (stdout, stderr []byte, err error)
	calls  []call
}

func (f *fakeRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{path: path, args: args})
	if f.handle == nil {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return f.handle(args, stdin)
}

func (f *fakeRunner) last() call {
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

// respond answers every call with stdout.
func respond(stdout string) *fakeRunner {
	return &fakeRunner{handle: func([]string, io.Reader) ([]byte, []byte, error) {
		return []byte(stdout), nil, nil
	}}
}

// failWith fails every call, writing msg to stderr.
func failWith(msg string) *fakeRunner {
	return &fakeRunner{handle: func([]string, io.Reader) ([]byte, []byte, error) {
		return nil, []byte(msg), errors.New(msg)
	}}
}

// hang never answers.
func hang() *fakeRunner {
	return &fakeRunner{}
}
