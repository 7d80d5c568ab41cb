package syllable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func leakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	}
}

func TestClient_Count(t *testing.T) {
	defer goleak.VerifyNone(t, append(leakOptions(), goleak.IgnoreCurrent())...)

	var gotPath, gotKey, gotHost string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"word":"over lazy dogs","syllables":{"count":5,"list":["o","ver","la","zy","dogs"]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "key123", "words.example", time.Second, zap.NewNop())
	n, err := c.Count(context.Background(), "over lazy dogs")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "/words/over%20lazy%20dogs/syllables", gotPath)
	assert.Equal(t, "key123", gotKey)
	assert.Equal(t, "words.example", gotHost)
}

func TestClient_MissingSyllablesCountsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-RapidAPI-Key"))
		w.Write([]byte(`{"word":"zzyzx"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second, zap.NewNop())
	n, err := c.Count(context.Background(), "zzyzx")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"word not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second, zap.NewNop())
	_, err := c.Count(context.Background(), "qwxyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClient_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second, zap.NewNop())
	_, err := c.Count(context.Background(), "word")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, "", "", 50*time.Millisecond, zap.NewNop())
	_, err := c.Count(context.Background(), "slow")
	require.Error(t, err)
}
