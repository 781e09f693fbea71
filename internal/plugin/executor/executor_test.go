package executor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/drape/internal/plugin/protocol"
	"github.com/jmylchreest/drape/pkg/plugin"
)

const jsonInfo = `{"name":"shell-search","type":"search","version":"1.0.0","protocol_version":"0.1.0","plugin_protocol":"json-stdio"}`

// providerRunner answers --plugin-info with info and searches with search.
func providerRunner(info string, search func(req plugin.SearchRequest) (string, error)) *fakeRunner {
	return &fakeRunner{
		handle: func(args []string, stdin io.Reader) ([]byte, []byte, error) {
			if len(args) == 1 && args[0] == plugin.InfoFlag {
				return []byte(info), nil, nil
			}
			var req plugin.SearchRequest
			if err := json.NewDecoder(stdin).Decode(&req); err != nil {
				return nil, []byte("bad request"), err
			}
			out, err := search(req)
			return []byte(out), nil, err
		},
	}
}

func TestNewDetectsProtocol(t *testing.T) {
	tests := []struct {
		name    string
		info    string
		want    protocol.PluginType
		wantErr bool
	}{
		{"json-stdio", jsonInfo, protocol.PluginTypeJSON, false},
		{"go-plugin", `{"name":"catalog","plugin_protocol":"go-plugin","protocol_version":"0.1.0"}`, protocol.PluginTypeGoPlugin, false},
		{"incompatible", `{"name":"old","protocol_version":"1.0.0"}`, "", true},
		{"garbage", `not json`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := respond(tt.info)
			e, err := New(context.Background(), "/opt/providers/search", WithRunner(runner))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if c := runner.last(); c.path != "/opt/providers/search" || len(c.args) != 1 || c.args[0] != plugin.InfoFlag {
				t.Errorf("detection ran %s %v", c.path, c.args)
			}
			if tt.wantErr {
				return
			}
			defer e.Close()
			if e.Protocol() != tt.want {
				t.Errorf("Protocol() = %q, want %q", e.Protocol(), tt.want)
			}
		})
	}
}

func TestNewQueryFailure(t *testing.T) {
	_, err := New(context.Background(), "/missing", WithRunner(failWith("permission denied")))
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("New() error = %v, want stderr in message", err)
	}
}

func TestNewTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New(ctx, "/slow", WithRunner(hang()))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("New() error = %v, want deadline exceeded", err)
	}
}

func TestSearchJSON(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		runErr    error
		wantCount int
		wantErr   string
	}{
		{"response object", `{"products":[{"id":"a","title":"Silk Scarf"},{"id":"b","title":"Wool Coat"}]}`, nil, 2, ""},
		{"bare array", `[{"id":"a","title":"Silk Scarf"}]`, nil, 1, ""},
		{"no results", `{"products":null}`, nil, 0, ""},
		{"provider error", `{"products":[],"error":"rate limited"}`, nil, 0, "rate limited"},
		{"invalid output", `Segmentation fault`, nil, 0, "failed to parse plugin output"},
		{"process failure", ``, errors.New("exit status 2"), 0, "plugin execution failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen plugin.SearchRequest
			runner := providerRunner(jsonInfo, func(req plugin.SearchRequest) (string, error) {
				seen = req
				return tt.output, tt.runErr
			})
			e, err := New(context.Background(), "/opt/providers/search", WithRunner(runner))
			if err != nil {
				t.Fatal(err)
			}

			req := plugin.SearchRequest{Query: "silk scarf", Category: "accessories", Limit: 8}
			products, err := e.Search(context.Background(), req)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Search() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if products == nil || len(products) != tt.wantCount {
				t.Errorf("Search() = %#v, want %d products", products, tt.wantCount)
			}
			if seen != req {
				t.Errorf("provider received %+v, want %+v", seen, req)
			}
			if len(runner.calls) != 2 {
				t.Errorf("runner calls = %d, want 2", len(runner.calls))
			}
		})
	}
}

func TestInfo(t *testing.T) {
	e, err := New(context.Background(), "p", WithRunner(respond(jsonInfo)))
	if err != nil {
		t.Fatal(err)
	}
	if e.Info().Name != "shell-search" || e.Info().Version != "1.0.0" {
		t.Errorf("Info() = %+v", e.Info())
	}
}

// TestRealProcessRunner runs a small shell provider end to end.
func TestRealProcessRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell provider needs /bin/sh")
	}

	script := `#!/bin/sh
if [ "$1" = "--plugin-info" ]; then
  echo '` + jsonInfo + `'
  exit 0
fi
cat >/dev/null
echo "warming cache" >&2
echo '{"products":[{"id":"sh-1","title":"Black Leather Boots","price":"$89.99"}]}'
`
	path := filepath.Join(t.TempDir(), "shell-search")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { // #nosec G306 -- test provider must be executable
		t.Fatal(err)
	}

	e, err := New(context.Background(), path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	products, err := e.Search(context.Background(), plugin.SearchRequest{Query: "boots"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(products) != 1 || products[0].Title != "Black Leather Boots" {
		t.Errorf("Search() = %+v", products)
	}
}
