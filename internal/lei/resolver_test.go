package lei

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bond-registry/internal/metrics"
)

const testLEI = "R0MUWSFPU8MPRO8K5P83"

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newRegistry(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveStripsSpaces(t *testing.T) {
	var gotLEI string
	srv := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		gotLEI = r.URL.Query().Get("lei")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"Entity":{"LegalName":{"$":"BNP PARIBAS SA"}}},{"Entity":{"LegalName":{"$":"IGNORED"}}}]`)
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	client := NewGLEIFClient(srv.URL, WithLogger(quietLogger()), WithMetrics(m))

	name, err := client.Resolve(context.Background(), testLEI)
	require.NoError(t, err)
	assert.Equal(t, "BNPPARIBASSA", name)
	assert.Equal(t, testLEI, gotLEI)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LEILookups.WithLabelValues(metrics.LookupResolved)))
}

func TestResolveKeepsExistingEndpointQuery(t *testing.T) {
	var gotQuery string
	srv := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `[{"Entity":{"LegalName":{"$":"MOCK BANK"}}}]`)
	})

	client := NewGLEIFClient(srv.URL+"/records?format=json", WithLogger(quietLogger()))
	_, err := client.Resolve(context.Background(), testLEI)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "format=json")
	assert.Contains(t, gotQuery, "lei="+testLEI)
}

func TestResolveUnknownLEI(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome string
	}{
		{name: "non-success status", status: http.StatusBadRequest, body: `{"message":"Invalid LEI"}`},
		{name: "not found status", status: http.StatusNotFound, body: ``},
		{name: "empty result list", status: http.StatusOK, body: `[]`},
		{name: "empty legal name", status: http.StatusOK, body: `[{"Entity":{"LegalName":{"$":""}}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			client := NewGLEIFClient(srv.URL, WithLogger(quietLogger()))
			_, err := client.Resolve(context.Background(), "AAAAAAAAAAAAAAAAAAAA")
			require.ErrorIs(t, err, ErrUnknownLEI)
			assert.NotErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestResolveUnavailable(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL
		srv.Close()

		client := NewGLEIFClient(endpoint, WithLogger(quietLogger()))
		_, err := client.Resolve(context.Background(), testLEI)
		require.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})

		client := NewGLEIFClient(srv.URL, WithLogger(quietLogger()), WithTimeout(50*time.Millisecond))
		start := time.Now()
		_, err := client.Resolve(context.Background(), testLEI)
		require.ErrorIs(t, err, ErrUnavailable)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>maintenance</html>`)
		})

		client := NewGLEIFClient(srv.URL, WithLogger(quietLogger()))
		_, err := client.Resolve(context.Background(), testLEI)
		require.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestNewGLEIFClientTimeout(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		client := NewGLEIFClient("http://registry.invalid")
		assert.Equal(t, defaultTimeout, client.client.Timeout)
	})

	t.Run("independent of option order", func(t *testing.T) {
		shared := &http.Client{}
		before := NewGLEIFClient("http://registry.invalid", WithTimeout(time.Second), WithHTTPClient(shared))
		after := NewGLEIFClient("http://registry.invalid", WithHTTPClient(shared), WithTimeout(time.Second))

		assert.Equal(t, time.Second, before.client.Timeout)
		assert.Equal(t, time.Second, after.client.Timeout)
	})

	t.Run("leaves the caller's client untouched", func(t *testing.T) {
		shared := &http.Client{Timeout: time.Minute}
		client := NewGLEIFClient("http://registry.invalid", WithHTTPClient(shared), WithTimeout(time.Second))

		assert.Equal(t, time.Minute, shared.Timeout)
		assert.NotSame(t, shared, client.client)
		assert.Zero(t, http.DefaultClient.Timeout)
	})
}

func TestResolveMakesSingleAttempt(t *testing.T) {
	calls := 0
	srv := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewGLEIFClient(srv.URL, WithLogger(quietLogger()))
	_, err := client.Resolve(context.Background(), testLEI)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestResolveRejectsEmptyIdentifier(t *testing.T) {
	client := NewGLEIFClient("http://127.0.0.1:1", WithLogger(quietLogger()))
	_, err := client.Resolve(context.Background(), "  ")
	require.ErrorIs(t, err, ErrUnknownLEI)
}
