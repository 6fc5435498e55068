package azdo_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devops-trace/internal/azdo"
)

func TestClient_AuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := azdo.New(azdo.Config{Organization: "org", PAT: "token", BaseURL: srv.URL}, nil)

	var out map[string]any
	require.NoError(t, client.GetJSON(context.Background(), srv.URL+"/whatever", &out))

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":token"))
	assert.Equal(t, want, gotAuth)
	assert.Equal(t, want, azdo.BasicAuthHeader("token"))
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not permitted", http.StatusForbidden)
	}))
	defer srv.Close()

	client := azdo.New(azdo.Config{Organization: "org", PAT: "p", BaseURL: srv.URL}, nil)

	var out map[string]any
	err := client.GetJSON(context.Background(), srv.URL+"/thing", &out)
	require.Error(t, err)

	var statusErr *azdo.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "not permitted")
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"broken`))
	}))
	defer srv.Close()

	client := azdo.New(azdo.Config{Organization: "org", PAT: "p", BaseURL: srv.URL}, nil)

	var out map[string]any
	assert.Error(t, client.GetJSON(context.Background(), srv.URL+"/thing", &out))
}

func TestListRepositories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/org/ProjA/_apis/git/repositories", r.URL.Path)
		w.Write([]byte(`{"count": 2, "value": [{"name": "svc"}, {"name": "lib"}]}`))
	}))
	defer srv.Close()

	client := azdo.New(azdo.Config{Organization: "org", PAT: "p", BaseURL: srv.URL}, nil)

	repos, err := client.ListRepositories(context.Background(), "ProjA")
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "svc", repos[0].Name)
}
