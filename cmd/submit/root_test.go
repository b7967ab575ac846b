package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answerPage = `<html><body>
<input type="radio" id="q1-A" name="q1"><input type="radio" id="q1-B" name="q1">
<input type="radio" id="q1-C" name="q1"><input type="radio" id="q1-D" name="q1">
<input type="radio" id="q2-A" name="q2" checked><input type="radio" id="q2-B" name="q2">
<input type="radio" id="q2-C" name="q2"><input type="radio" id="q2-D" name="q2">
<button id="save_button">Save</button>
</body></html>`

type recordingServer struct {
	*httptest.Server
	mu       sync.Mutex
	payloads []map[string]map[string]string
}

func newRecordingServer(t *testing.T, reply string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p map[string]map[string]string
		_ = json.Unmarshal(body, &p)
		rs.mu.Lock()
		rs.payloads = append(rs.payloads, p)
		rs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func writeFixtures(t *testing.T) (pagePath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	pagePath = filepath.Join(dir, "index.html")
	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(pagePath, []byte(answerPage), 0o600))
	require.NoError(t, os.WriteFile(configPath, []byte("logger:\n  level: error\n"), 0o600))
	return pagePath, configPath
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubmit_WritesFeedbackToStdout(t *testing.T) {
	srv := newRecordingServer(t, `{"feedback":"Saved!"}`)
	pagePath, configPath := writeFixtures(t)

	out, err := runCmd(t,
		"--config", configPath,
		"--page", pagePath,
		"--url", srv.URL+"/save",
		"--select", "identity=B",
	)
	require.NoError(t, err)

	require.Len(t, srv.payloads, 1)
	assert.Equal(t, map[string]map[string]string{
		"identity": {"code": "B"},
		"negate":   {"code": "A"},
	}, srv.payloads[0])

	assert.Equal(t, 1, strings.Count(out, "<div>Saved!</div>"))
	assert.Contains(t, out, `<div>Saved!</div><button id="save_button">`)
}

func TestSubmit_ClearSelectionAndWriteFile(t *testing.T) {
	srv := newRecordingServer(t, `{"feedback":"Noted"}`)
	pagePath, configPath := writeFixtures(t)
	outPath := filepath.Join(t.TempDir(), "out.html")

	_, err := runCmd(t,
		"--config", configPath,
		"--page", pagePath,
		"--url", srv.URL+"/save",
		"--select", "negate=E",
		"--out", outPath,
	)
	require.NoError(t, err)

	require.Len(t, srv.payloads, 1)
	assert.Equal(t, "E", srv.payloads[0]["identity"]["code"])
	assert.Equal(t, "E", srv.payloads[0]["negate"]["code"])

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "<div>Noted</div>")
}

func TestSubmit_BadSelection(t *testing.T) {
	srv := newRecordingServer(t, `{"feedback":"Saved!"}`)
	pagePath, configPath := writeFixtures(t)

	for _, sel := range []string{"identity", "unknown=A", "identity=Z"} {
		_, err := runCmd(t,
			"--config", configPath,
			"--page", pagePath,
			"--url", srv.URL+"/save",
			"--select", sel,
		)
		assert.Error(t, err, sel)
	}
	assert.Empty(t, srv.payloads)
}

func TestSubmit_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	pagePath, configPath := writeFixtures(t)

	out, err := runCmd(t,
		"--config", configPath,
		"--page", pagePath,
		"--url", srv.URL+"/save",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Empty(t, out)
}

func TestSubmit_RequiresPage(t *testing.T) {
	_, err := runCmd(t)
	assert.Error(t, err)
}
