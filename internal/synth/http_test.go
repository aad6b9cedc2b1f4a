package synth

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportStreamsAudio(t *testing.T) {
	var gotAuth, gotFormat, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotFormat = r.Header.Get("X-Microsoft-OutputFormat")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	tr, err := NewHTTPTransport(HTTPConfig{
		Endpoint:          srv.URL,
		RequestsPerMinute: 6000,
		Tokens:            NewTokenSource("", "", "static-token"),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tr.Synthesize(context.Background(), Request{Text: "hello", Voice: "en-US-AriaNeural"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "ID3audio", buf.String())
	assert.Equal(t, "Bearer static-token", gotAuth)
	assert.Equal(t, "audio-24khz-48kbitrate-mono-mp3", gotFormat)
	assert.Contains(t, gotBody, ">hello</prosody>")
}

func TestHTTPTransportUnauthorizedIsAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tr, err := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, RequestsPerMinute: 6000})
	require.NoError(t, err)

	err = tr.Synthesize(context.Background(), Request{Text: "hello", Voice: "en-US-AriaNeural"}, io.Discard)
	require.Error(t, err)
	assert.True(t, IsAuthFailure(err), err.Error())
}

func TestHTTPTransportEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr, err := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, RequestsPerMinute: 6000})
	require.NoError(t, err)

	err = tr.Synthesize(context.Background(), Request{Text: "hello", Voice: "en-US-AriaNeural"}, io.Discard)
	assert.True(t, errors.Is(err, ErrNoAudio))
}

func TestHTTPTransportRejectsEmptyText(t *testing.T) {
	tr, err := NewHTTPTransport(HTTPConfig{Endpoint: "http://127.0.0.1:1"})
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Synthesize(context.Background(), Request{Text: "  "}, io.Discard), ErrEmptyText)

	_, err = NewHTTPTransport(HTTPConfig{})
	assert.Error(t, err)
}

func TestTokenSourceRefresh(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		_, _ = w.Write([]byte("fresh-token\n"))
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "secret", "old")
	assert.Equal(t, "old", ts.Token())
	require.NoError(t, ts.Refresh(context.Background()))
	assert.Equal(t, "fresh-token", ts.Token())
	assert.Equal(t, "secret", gotKey)
}

func TestTokenSourceRefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "bad", "old")
	assert.Error(t, ts.Refresh(context.Background()))
	assert.Equal(t, "old", ts.Token())

	assert.NoError(t, NewTokenSource("", "", "x").Refresh(context.Background()))
}
