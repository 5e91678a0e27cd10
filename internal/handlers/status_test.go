// internal/handlers/status_test.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvankampen/fraghub/internal/query"
)

// fakeQuerier returns a canned result or error instead of touching the network.
type fakeQuerier struct {
	res *query.Result
	err error

	gotHost string
	gotPort int
}

func (f *fakeQuerier) Query(ctx context.Context, host string, port int) (*query.Result, error) {
	f.gotHost = host
	f.gotPort = port
	return f.res, f.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestStatusHandlerOnline(t *testing.T) {
	fq := &fakeQuerier{res: &query.Result{
		Status: "online", Players: 3, MaxPlayers: 16, Map: "dm1", GameType: "0",
	}}
	h := StatusHandler(testLogger(), fq)

	req := httptest.NewRequest("GET", "/status?host=example.com&port=27960", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "example.com", fq.gotHost)
	assert.Equal(t, 27960, fq.gotPort)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, float64(3), body["players"])
	assert.Equal(t, "dm1", body["map"])
}

func TestStatusHandlerTimeoutMapsToOffline(t *testing.T) {
	fq := &fakeQuerier{err: query.ErrTimeout}
	h := StatusHandler(testLogger(), fq)

	req := httptest.NewRequest("GET", "/status?host=example.com&port=27960", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, "failures are a structured body, not an HTTP error")
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "offline", body["status"])
	assert.Equal(t, "timeout", body["error"])
}

func TestStatusHandlerTransportError(t *testing.T) {
	fq := &fakeQuerier{err: errors.New("query: send probe: network is unreachable")}
	h := StatusHandler(testLogger(), fq)

	req := httptest.NewRequest("GET", "/status?host=example.com&port=27960", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["error"], "network is unreachable")
}

func TestStatusHandlerValidation(t *testing.T) {
	h := StatusHandler(testLogger(), &fakeQuerier{})

	for _, target := range []string{
		"/status?port=27960",        // missing host
		"/status?host=x",            // missing port
		"/status?host=x&port=abc",   // not an integer
		"/status?host=x&port=0",     // below range
		"/status?host=x&port=70000", // above range
		"/status?host=x&port=-1",    // negative
	} {
		req := httptest.NewRequest("GET", target, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
	}
}
