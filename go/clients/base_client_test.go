package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameAPIPath(t *testing.T) {
	cases := []struct {
		gameKey string
		path    string
		want    string
	}{
		{gameKey: "root", path: "/api/matches/3", want: "/api/games/ROOT/matches/3"},
		{gameKey: "Root", path: "/matches/active", want: "/api/games/ROOT/matches/active"},
		{gameKey: "root", path: "groups", want: "/api/games/ROOT/groups"},
		{gameKey: "root", path: "/api", want: "/api/games/ROOT"},
		{gameKey: "root", path: "/apiary", want: "/api/games/ROOT/apiary"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, GameAPIPath(tc.gameKey, tc.path))
		})
	}
}

func TestResolveURL(t *testing.T) {
	c := NewBaseClient("http://league.local:8080/")
	assert.Equal(t, "http://league.local:8080/api/games", c.ResolveURL("/api/games"))
	assert.Equal(t, "http://league.local:8080/api/games", c.ResolveURL("api/games"))
	assert.Equal(t, "https://other.host/x", c.ResolveURL("https://other.host/x"))

	bare := NewBaseClient("")
	assert.Equal(t, "/api/games", bare.ResolveURL("/api/games"))
}

func TestMakeRequest_SendsJSONAndHeaders(t *testing.T) {
	var got struct {
		method      string
		contentType string
		requestID   string
		custom      string
		body        map[string]int
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.contentType = r.Header.Get("Content-Type")
		got.requestID = r.Header.Get(requestIDHeader)
		got.custom = r.Header.Get("Accept")
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":1}`))
	}))
	defer srv.Close()

	c := NewBaseClient(srv.URL)
	c.SetHeader("Accept", "application/json")

	var out map[string]int
	require.NoError(t, c.Post(context.Background(), "/things", map[string]int{"score": 7}, &out))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/json", got.contentType)
	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, "application/json", got.custom)
	assert.Equal(t, map[string]int{"score": 7}, got.body)
	assert.Equal(t, map[string]int{"ok": 1}, out)
}

func TestMakeRequest_EmptyResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewBaseClient(srv.URL)
	data, err := c.MakeRequest(context.Background(), http.MethodPost, "/start", nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, c.Delete(context.Background(), "/matches/1"))

	out := map[string]int{"untouched": 1}
	require.NoError(t, c.Get(context.Background(), "/empty", &out))
	assert.Equal(t, map[string]int{"untouched": 1}, out)
}

func TestMakeRequest_ErrorMessages(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "json message", status: http.StatusConflict, body: `{"message":"draft is not in the pick phase"}`, message: "draft is not in the pick phase"},
		{name: "no body", status: http.StatusNotFound, message: "404 Not Found"},
		{name: "non json body", status: http.StatusBadGateway, body: "<html>bad gateway</html>", message: "502 Bad Gateway"},
		{name: "empty message", status: http.StatusInternalServerError, body: `{"message":""}`, message: "500 Internal Server Error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := NewBaseClient(srv.URL).Get(context.Background(), "/x", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.message, ErrorMessage(err))
			assert.Equal(t, tc.message, ErrorMessage(fmt.Errorf("failed to load: %w", err)))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "boom", ErrorMessage(errors.New("boom")))
}

func TestDoJSON_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := NewBaseClient(srv.URL).Get(context.Background(), "/x", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal response")
}
