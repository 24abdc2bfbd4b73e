package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
)

const callTimeout = 3 * time.Second

// UserIndexer mirrors public user fields into an Elasticsearch index.
type UserIndexer struct {
	Client    *es.Client
	IndexName string
}

func NewUserIndexer(client *es.Client, index string) *UserIndexer {
	return &UserIndexer{Client: client, IndexName: index}
}

// usersMapping keeps role exact and lets account and name match as the user types.
const usersMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "account":      {"type": "search_as_you_type"},
      "name":         {"type": "search_as_you_type"},
      "email":        {"type": "search_as_you_type"},
      "avatar":       {"type": "keyword", "index": false},
      "introduction": {"type": "text"},
      "role":         {"type": "keyword"},
      "created_at":   {"type": "date"},
      "updated_at":   {"type": "date"}
    }
  }
}`

// EnsureIndex creates the users index with its mapping when it does not exist yet.
func (x *UserIndexer) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := x.Client.Indices.Exists([]string{x.IndexName}, x.Client.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.Client.Indices.Create(x.IndexName,
		x.Client.Indices.Create.WithContext(c),
		x.Client.Indices.Create.WithBody(strings.NewReader(usersMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.IndexName, res.Status())
	}
	return nil
}

type userDoc struct {
	ID           string `json:"id"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Avatar       string `json:"avatar"`
	Introduction string `json:"introduction"`
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func (x *UserIndexer) Index(ctx context.Context, u entity.PublicUser) error {
	b, err := json.Marshal(userDoc{
		ID:           u.ID,
		Account:      u.Account,
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       u.Avatar,
		Introduction: u.Introduction,
		Role:         u.Role.String(),
		CreatedAt:    u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := req.Do(c, x.Client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %s: %s", u.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over account, name and email. Admins are not searchable.
func (x *UserIndexer) Search(ctx context.Context, q string, size int) ([]entity.UserSummary, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"account^3", "name^2", "email"},
						"type":   "bool_prefix",
					},
				},
				"must_not": map[string]any{
					"term": map[string]any{"role": entity.RoleAdmin.String()},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := x.Client.Search(
		x.Client.Search.WithContext(c),
		x.Client.Search.WithIndex(x.IndexName),
		x.Client.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.UserSummary, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.UserSummary{
			ID:           h.Source.ID,
			Account:      h.Source.Account,
			Name:         h.Source.Name,
			Avatar:       h.Source.Avatar,
			Introduction: h.Source.Introduction,
		})
	}
	return out, nil
}
