// Package search keeps the Elasticsearch recipe index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "long"},
      "author_id":    {"type": "long"},
      "name":         {"type": "text"},
      "text":         {"type": "text"},
      "tags":         {"type": "keyword"},
      "ingredients":  {"type": "text"},
      "cooking_time": {"type": "integer"},
      "created_at":   {"type": "date"}
    }
  }
}`

// RecipeIndex implements full-text recipe search on one index.
type RecipeIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewRecipeIndex(es *elasticsearch.Client, index string) *RecipeIndex {
	return &RecipeIndex{ES: es, IndexName: index}
}

type document struct {
	ID          int64    `json:"id"`
	AuthorID    int64    `json:"author_id"`
	Name        string   `json:"name"`
	Text        string   `json:"text"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
	CookingTime int      `json:"cooking_time"`
	CreatedAt   string   `json:"created_at"`
}

func toDocument(r *entity.Recipe) document {
	d := document{
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
		Tags:        make([]string, 0, len(r.Tags)),
		Ingredients: make([]string, 0, len(r.Ingredients)),
	}
	for _, t := range r.Tags {
		d.Tags = append(d.Tags, t.Slug)
	}
	for _, ri := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, ri.Name)
	}
	return d
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *RecipeIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{x.IndexName}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	res, err = esapi.IndicesCreateRequest{Index: x.IndexName, Body: strings.NewReader(indexMapping)}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && !strings.Contains(readAll(res.Body), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", x.IndexName, res.Status())
	}
	return nil
}

func (x *RecipeIndex) Index(ctx context.Context, r *entity.Recipe) error {
	b, err := json.Marshal(toDocument(r))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.IndexName,
		DocumentID: strconv.FormatInt(r.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index recipe %d: %s", r.ID, res.Status())
	}
	return nil
}

// Remove deletes a recipe document; a missing document is not an error.
func (x *RecipeIndex) Remove(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete recipe %d: %s", id, res.Status())
	}
	return nil
}

// Search returns matching recipe ids by relevance and the total hit count.
func (x *RecipeIndex) Search(ctx context.Context, q string, limit, offset int) ([]int64, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	b, err := json.Marshal(buildQuery(q, limit, offset))
	if err != nil {
		return nil, 0, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search recipes: %s", res.Status())
	}
	return parseHits(res.Body)
}

func buildQuery(q string, limit, offset int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "text", "tags", "ingredients"},
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"id"},
		"from":    offset,
		"size":    limit,
	}
}

func parseHits(body io.Reader) ([]int64, int, error) {
	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID int64 `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, parsed.Hits.Total.Value, nil
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}
