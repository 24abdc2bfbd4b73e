package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingES(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	client, err := NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)

	assert.NoError(t, PingES(context.Background(), client, time.Second))

	status = http.StatusUnauthorized
	assert.Error(t, PingES(context.Background(), client, time.Second))
}
