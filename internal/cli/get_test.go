package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/glorpus-work/reqfile/internal/logger"
	"github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/glorpus-work/reqfile/test/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args against the config at cfgPath and returns what
// it wrote to stdout together with the captured log output.
func execute(t *testing.T, cmd *cobra.Command, cfgPath string, args ...string) (string, string, error) {
	t.Helper()

	format := ""
	verbose := false
	ConfigPath = &cfgPath
	OutputFormat = &format
	Verbose = &verbose
	t.Cleanup(func() {
		ConfigPath = nil
		OutputFormat = nil
		Verbose = nil
	})

	logs := &bytes.Buffer{}
	logger.SetTestOutput(logs)
	t.Cleanup(logger.UnsetTestOutput)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestGet_PersistsBody(t *testing.T) {
	srv := testutil.NewTestServer(t)
	dest := filepath.Join(t.TempDir(), "hello.txt")

	out, logs, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathHello, "-o", dest)
	require.NoError(t, err)

	assert.Equal(t, "200 5 bytes -> "+dest+"\n", out)
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, testutil.HelloBody, string(content))
	assert.Contains(t, logs, "request_id=")
	assert.Contains(t, logs, "status=success")
}

func TestGet_PrintBody(t *testing.T) {
	srv := testutil.NewTestServer(t)

	out, _, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathRedirect, "--print")
	require.NoError(t, err)
	assert.Equal(t, testutil.HelloBody, out)
}

func TestGet_ErrorStatusLeavesDestination(t *testing.T) {
	srv := testutil.NewTestServer(t)
	dest := filepath.Join(t.TempDir(), "existing.txt")
	require.NoError(t, os.WriteFile(dest, []byte("keep me"), 0o644))

	out, _, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathMissing, "-o", dest)
	require.NoError(t, err, "an HTTP error status is an outcome, not a failure")
	assert.Contains(t, out, "404 ")
	assert.NotContains(t, out, "->")

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(content))
}

func TestGet_EmptyBodyCreatesNothing(t *testing.T) {
	srv := testutil.NewTestServer(t)
	dest := filepath.Join(t.TempDir(), "empty.bin")

	out, _, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathEmpty, "-o", dest)
	require.NoError(t, err)
	assert.Equal(t, "200 0 bytes\n", out)
	assert.NoFileExists(t, dest)
}

func TestGet_JSONOutput(t *testing.T) {
	srv := testutil.NewTestServer(t)
	cfgPath := testutil.SetupTestConfig(t, "settings:\n  format: json\n")

	out, logs, err := execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathHello, "--print")
	require.NoError(t, err)

	var res result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, uint16(200), res.Status)
	assert.Equal(t, uint64(5), res.Size)
	assert.Equal(t, []byte(testutil.HelloBody), res.Payload)
	assert.False(t, res.Persisted)
	assert.NotEmpty(t, res.RequestID)
	assert.Contains(t, logs, `"request_id":"`+res.RequestID+`"`)
}

func TestGet_HeaderLayering(t *testing.T) {
	srv := testutil.NewTestServer(t)
	cfgPath := testutil.SetupTestConfig(t, `settings:
  user_agent: reqfile-test
  default_headers:
    Accept: text/plain
    X-Env: staging
`)

	out, _, err := execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathHeaders,
		"--print", "-H", "x-env: prod", "-H", "X-Trace:  abc ")
	require.NoError(t, err)

	headers := testutil.DecodeHeaders(t, []byte(out))
	assert.Equal(t, "reqfile-test", headers["User-Agent"])
	assert.Equal(t, "text/plain", headers["Accept"])
	assert.Equal(t, "prod", headers["X-Env"], "command line headers win over defaults")
	assert.Equal(t, "abc", headers["X-Trace"])
}

func TestGet_Failures(t *testing.T) {
	srv := testutil.NewTestServer(t)

	tests := []struct {
		name     string
		args     func(dir string) []string
		wantErr  error
		wantCode int
	}{
		{
			name: "invalid header name",
			args: func(string) []string {
				return []string{srv.URL + testutil.PathHello, "-H", "Bad Name: x"}
			},
			wantErr:  errors.ErrInvalidHeaderName,
			wantCode: ExitHeader,
		},
		{
			name: "header without colon",
			args: func(string) []string {
				return []string{srv.URL + testutil.PathHello, "-H", "NoColon"}
			},
			wantErr:  errors.ErrInvalidHeaderName,
			wantCode: ExitHeader,
		},
		{
			name: "invalid header value",
			args: func(string) []string {
				return []string{srv.URL + testutil.PathHello, "-H", "X-Ok: a\x00b"}
			},
			wantErr:  errors.ErrInvalidHeaderValue,
			wantCode: ExitHeader,
		},
		{
			name: "truncated body",
			args: func(dir string) []string {
				return []string{srv.URL + testutil.PathBroken, "-o", filepath.Join(dir, "broken.bin")}
			},
			wantErr:  errors.ErrNetwork,
			wantCode: ExitNetwork,
		},
		{
			name: "unwritable destination",
			args: func(dir string) []string {
				return []string{srv.URL + testutil.PathHello, "-o", filepath.Join(dir, "missing", "out.txt")}
			},
			wantErr:  errors.ErrPersistence,
			wantCode: ExitPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, _, err := execute(t, NewGetCmd(), emptyConfig(t), tt.args(dir)...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.NoFileExists(t, filepath.Join(dir, "broken.bin"))
		})
	}
}

func TestGet_ObjectStoreSetupFailureSendsNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(testutil.HelloBody))
	}))
	t.Cleanup(srv.Close)

	// An explicitly selected profile that does not exist makes the AWS config load fail.
	dir := t.TempDir()
	awsConfig := filepath.Join(dir, "aws-config")
	require.NoError(t, os.WriteFile(awsConfig, []byte("[default]\nregion = us-east-1\n"), 0o600))
	t.Setenv("AWS_CONFIG_FILE", awsConfig)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "aws-credentials"))
	t.Setenv("AWS_PROFILE", "reqfile-missing-profile")

	_, _, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL, "-o", "s3://bucket/key")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoObjectStore)
	assert.NotErrorIs(t, err, errors.ErrPersistence)
	assert.Equal(t, errors.KindUnknown, errors.KindOf(err))
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Zero(t, hits.Load())
}

func TestGet_Hooks(t *testing.T) {
	srv := testutil.NewTestServer(t)
	dir := t.TempDir()

	hookPath := filepath.Join(dir, "check.tengo")
	require.NoError(t, os.WriteFile(hookPath, []byte(`
		if status != 200 || !persisted || tag != "nightly" {
			err = "unexpected outcome"
		}
	`), 0o644))
	dest := filepath.Join(dir, "out.txt")
	_, _, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathHello,
		"--hook", hookPath, "--var", "tag=nightly", "-o", dest)
	require.NoError(t, err)

	_, _, err = execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathMissing,
		"--hook", hookPath, "--var", "tag=nightly")
	assert.ErrorIs(t, err, errors.ErrHookScript)
	assert.Equal(t, ExitFailure, ExitCode(err))

	_, _, err = execute(t, NewGetCmd(), emptyConfig(t), srv.URL, "--var", "novalue")
	assert.ErrorContains(t, err, "expected key=value")
}

func TestGet_OnFailureHookFromConfig(t *testing.T) {
	srv := testutil.NewTestServer(t)
	hooksDir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "marker")

	require.NoError(t, os.WriteFile(filepath.Join(hooksDir, "on-failure.tengo"), []byte(`
		if kind != "NetworkError" {
			err = "wrong kind " + kind
		}
	`), 0o644))
	cfgPath := testutil.SetupTestConfig(t, "settings:\n  hooks_dir: "+hooksDir+"\n")

	_, logs, err := execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathBroken, "-o", marker)
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.NotContains(t, logs, "on-failure hook failed")
	assert.Contains(t, logs, "kind=NetworkError")
}

func TestGet_MetricsFile(t *testing.T) {
	srv := testutil.NewTestServer(t)
	metricsPath := filepath.Join(t.TempDir(), "reqfile.prom")

	_, _, err := execute(t, NewGetCmd(), emptyConfig(t), srv.URL+testutil.PathHello, "--metrics-file", metricsPath)
	require.NoError(t, err)

	content, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `reqfile_fetches_total{result="ok"} 1`)
	assert.Contains(t, string(content), `reqfile_requests_total{code="200",method="get"} 1`)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(io.EOF))
	assert.Equal(t, ExitHeader, ExitCode(errors.InvalidHeaderValue("X", io.EOF)))
	assert.Equal(t, ExitNetwork, ExitCode(errors.Wrap(errors.Network(io.EOF), "context")))
	assert.Equal(t, ExitPersistence, ExitCode(errors.Persistence("p", io.EOF)))
}

func TestGet_Credentials(t *testing.T) {
	srv := testutil.NewTestServer(t)
	cfgPath := testutil.SetupTestConfig(t, `settings:
  auth:
    127.0.0.1:
      bearer:
        token: from-config
`)

	out, _, err := execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathHeaders, "--print")
	require.NoError(t, err)
	assert.Equal(t, "Bearer from-config", testutil.DecodeHeaders(t, []byte(out))["Authorization"])

	out, _, err = execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathHeaders, "--print", "-u", "user:pass")
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNz", testutil.DecodeHeaders(t, []byte(out))["Authorization"])

	out, _, err = execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathHeaders, "--print",
		"--bearer", "flag", "-H", "Authorization: Custom x")
	require.NoError(t, err)
	assert.Equal(t, "Custom x", testutil.DecodeHeaders(t, []byte(out))["Authorization"], "-H wins over credentials")

	_, _, err = execute(t, NewGetCmd(), cfgPath, srv.URL+testutil.PathHello, "--bearer", "bad\ntoken")
	assert.ErrorIs(t, err, errors.ErrInvalidHeaderValue)
}
