package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientWithAuth(t *testing.T) {
	var user, pass string
	var ok bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok = r.BasicAuth()
	}))
	defer server.Close()

	client := NewHTTPClientWithAuth("api", "token", time.Second)
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, ok)
	assert.Equal(t, "api", user)
	assert.Equal(t, "token", pass)
	_, _, set := req.BasicAuth()
	assert.False(t, set, "caller request is not modified")
}

func TestNewHTTPClientWithoutAuth(t *testing.T) {
	client := NewHTTPClientWithAuth("", "", 2*time.Second)
	assert.Nil(t, client.Transport)
	assert.Equal(t, 2*time.Second, client.Timeout)
}
