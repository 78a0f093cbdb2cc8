package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	reqerrors "github.com/glorpus-work/reqfile/pkg/errors"
	"github.com/glorpus-work/reqfile/pkg/fetch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	m := New("test")
	f := fetch.NewFetcher(m.InstrumentClient(nil), nil)

	for _, path := range []string{"/a", "/b", "/missing"} {
		_, err := f.Fetch(context.Background(), fetch.Request{URL: srv.URL + path})
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("200", "get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("404", "get")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestInstrumentClient_KeepsOriginal(t *testing.T) {
	orig := &http.Client{}
	m := New("test")

	c := m.InstrumentClient(orig)
	assert.NotSame(t, orig, c)
	assert.Nil(t, orig.Transport, "original client must not be modified")
	assert.NotNil(t, c.Transport)
}

func TestObserve(t *testing.T) {
	m := New("test")

	m.Observe(&fetch.Outcome{Status: 200, Size: 5, Persisted: true}, nil)
	m.Observe(&fetch.Outcome{Status: 404, Size: 10}, nil)
	m.Observe(nil, reqerrors.Network(io.ErrUnexpectedEOF))
	m.Observe(nil, reqerrors.Persistence("out.bin", os.ErrPermission))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("NetworkError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("PersistenceError")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistedTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.bodyBytes))
}

func TestWriteFile(t *testing.T) {
	m := New("reqfile")
	m.Observe(&fetch.Outcome{Status: 200, Size: 1}, nil)

	path := filepath.Join(t.TempDir(), "reqfile.prom")
	require.NoError(t, m.WriteFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `reqfile_fetches_total{result="ok"} 1`)

	err = m.WriteFile(filepath.Join(t.TempDir(), "missing", "reqfile.prom"))
	assert.Error(t, err)
}
