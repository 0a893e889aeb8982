package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/tabula/internal/datasets"
	"github.com/aidanlsb/tabula/internal/kv"
	"github.com/aidanlsb/tabula/internal/logging"
	"github.com/aidanlsb/tabula/internal/session"
	"github.com/aidanlsb/tabula/internal/source"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	outputCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		outputCh <- buf.String()
	}()

	fn()

	os.Stdout = orig
	_ = w.Close()
	return <-outputCh
}

// useTempConfig points the global config and state paths at a temp dir and
// restores every global the commands read when the test ends.
func useTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	prevConfig, prevResolved, prevState := configPath, resolvedConfigPath, resolvedStatePath
	prevCfg, prevSource, prevJSON := cfg, sourceName, jsonOutput
	t.Cleanup(func() {
		configPath, resolvedConfigPath, resolvedStatePath = prevConfig, prevResolved, prevState
		cfg, sourceName, jsonOutput = prevCfg, prevSource, prevJSON
	})

	configPath = filepath.Join(dir, "config.toml")
	resolvedConfigPath = configPath
	resolvedStatePath = filepath.Join(dir, "state.toml")
	cfg = nil
	sourceName = ""
	jsonOutput = false
	return dir
}

// newSampleApp builds an app over the sample source and an in-memory store.
func newSampleApp(t *testing.T) *app {
	t.Helper()
	ds, err := datasets.Open(kv.NewMemStore(), logging.Nop())
	require.NoError(t, err)
	src := source.Sample{}
	return &app{
		sourceKind: "sample",
		src:        src,
		datasets:   ds,
		session:    session.New(src, logging.Nop(), session.WithDatasets(ds)),
	}
}

type envelope struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

func decodeEnvelope(t *testing.T, out string) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}
