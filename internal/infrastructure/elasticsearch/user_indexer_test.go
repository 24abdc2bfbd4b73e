package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
)

type recorded struct {
	method, path string
	body         map[string]any
}

func newTestIndexer(t *testing.T, status int, reply string) (*UserIndexer, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path}
		_ = json.Unmarshal(b, &rec.body)
		calls = append(calls, rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewUserIndexer(client, "users"), &calls
}

func TestUserIndexer_Index(t *testing.T) {
	idx, calls := newTestIndexer(t, http.StatusCreated, `{"result":"created"}`)

	err := idx.Index(context.Background(), entity.PublicUser{ID: "u1", Account: "alice", Name: "Alice", Role: entity.RoleUser})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/users/_doc/u1", (*calls)[0].path)
	assert.Equal(t, "alice", (*calls)[0].body["account"])
	_, hasPassword := (*calls)[0].body["password"]
	assert.False(t, hasPassword)
}

func TestUserIndexer_IndexErrorStatus(t *testing.T) {
	idx, _ := newTestIndexer(t, http.StatusBadRequest, `{"error":"bad"}`)

	err := idx.Index(context.Background(), entity.PublicUser{ID: "u1"})
	assert.Error(t, err)
}

func TestUserIndexer_Search(t *testing.T) {
	reply := `{"hits":{"hits":[{"_id":"u1","_source":{"id":"u1","account":"alice","name":"Alice","avatar":"a.png","introduction":"hi"}}]}}`
	idx, calls := newTestIndexer(t, http.StatusOK, reply)

	hits, err := idx.Search(context.Background(), "ali", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, entity.UserSummary{ID: "u1", Account: "alice", Name: "Alice", Avatar: "a.png", Introduction: "hi"}, hits[0])

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/users/_search"))
	assert.Equal(t, float64(5), (*calls)[0].body["size"])
}

func TestUserIndexer_EnsureIndex(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		idx, calls := newTestIndexer(t, http.StatusOK, `{}`)
		require.NoError(t, idx.EnsureIndex(context.Background()))
		require.Len(t, *calls, 1)
		assert.Equal(t, http.MethodHead, (*calls)[0].method)
	})

	t.Run("missing", func(t *testing.T) {
		var methods []string
		var mapping map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			w.Header().Set("X-Elastic-Product", "Elasticsearch")
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&mapping)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"acknowledged":true}`)
		}))
		t.Cleanup(srv.Close)
		client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
		require.NoError(t, err)

		require.NoError(t, NewUserIndexer(client, "users").EnsureIndex(context.Background()))
		assert.Equal(t, []string{http.MethodHead, http.MethodPut}, methods)
		props := mapping["mappings"].(map[string]any)["properties"].(map[string]any)
		assert.Equal(t, "keyword", props["role"].(map[string]any)["type"])
	})
}
