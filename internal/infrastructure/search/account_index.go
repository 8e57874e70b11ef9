package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/linkfolio/linkfolio/internal/domain/entity"
)

// AccountDoc is the search projection of an account. Only public,
// non-sensitive fields are indexed.
type AccountDoc struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	UserType    string `json:"user_type"`
	IsPublic    bool   `json:"is_public"`
}

// AccountIndex maintains the accounts search index.
type AccountIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewAccountIndex(es *elasticsearch.Client, index string) *AccountIndex {
	return &AccountIndex{es: es, index: index}
}

func docFromAccount(a *entity.Account) AccountDoc {
	return AccountDoc{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Bio:         a.Bio,
		AvatarURL:   a.AvatarURL,
		UserType:    string(a.UserType),
		IsPublic:    a.IsPublic,
	}
}

func (i *AccountIndex) Index(ctx context.Context, a *entity.Account) error {
	body, err := json.Marshal(docFromAccount(a))
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: a.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index account %s: %s", a.ID, res.Status())
	}
	return nil
}

func (i *AccountIndex) Delete(ctx context.Context, accountID string) error {
	res, err := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: accountID,
	}.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// 404 means the document was never indexed; deletion is idempotent.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deindex account %s: %s", accountID, res.Status())
	}
	return nil
}

// Search matches the query against username, display name and bio. Only
// public accounts are returned.
func (i *AccountIndex) Search(ctx context.Context, query string, limit int) ([]AccountDoc, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var buf bytes.Buffer
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"username^3", "display_name^2", "bio"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_public": true},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search accounts: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source AccountDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]AccountDoc, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
