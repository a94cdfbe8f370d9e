package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	var gotAuth, gotAccept string

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotAccept = req.Header.Get("Accept")

		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(`{"name":"essentialsx"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), WithToken("token"))
	require.NoError(t, err)

	var data struct {
		Name string `json:"name"`
	}
	err = c.GetJSON(context.Background(), srv.URL, map[string]string{"Accept": "application/json"}, &data)
	require.NoError(t, err)

	assert.Equal(t, "essentialsx", data.Name)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClient_GetJSON_statusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		http.Error(rw, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background())
	require.NoError(t, err)

	var data map[string]interface{}
	err = c.GetJSON(context.Background(), srv.URL, nil, &data)

	statusErr := &StatusError{}
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestClient_GetJSON_malformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		_, _ = rw.Write([]byte(`{not json`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background())
	require.NoError(t, err)

	var data map[string]interface{}
	err = c.GetJSON(context.Background(), srv.URL, nil, &data)
	require.Error(t, err)
}

func TestClient_GetHTML_browserHeaders(t *testing.T) {
	var gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		gotUA = req.Header.Get("User-Agent")
		_, _ = rw.Write([]byte("<html><body>hello</body></html>"))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background())
	require.NoError(t, err)

	body, err := c.GetHTML(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, body, "hello")
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestClient_WithRetry(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = rw.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), WithRetry(2, 10*time.Millisecond))
	require.NoError(t, err)

	var data map[string]interface{}
	err = c.GetJSON(context.Background(), srv.URL, nil, &data)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestClient_WithRateLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set(headerRateRemaining, "100")
		_, _ = rw.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), WithRateLimiter(10, 1, time.Now().Add(time.Minute)))
	require.NoError(t, err)

	start := time.Now()

	var data map[string]interface{}
	err = c.GetJSON(context.Background(), srv.URL, nil, &data)
	require.NoError(t, err)

	// Plenty of requests remaining: no throttling expected.
	assert.Less(t, time.Since(start), time.Second)
}
