package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/recipe_api/internal/config"
	"github.com/Skotchmaster/recipe_api/internal/models"
)

type Document struct {
	ID          uint     `json:"id"`
	UserID      uint     `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Ingredients []string `json:"ingredients"`
}

func NewDocument(r *models.Recipe) Document {
	doc := Document{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Tags:        make([]string, 0, len(r.Tags)),
		Ingredients: make([]string, 0, len(r.Ingredients)),
	}
	for _, t := range r.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	for _, i := range r.Ingredients {
		doc.Ingredients = append(doc.Ingredients, i.Name)
	}
	return doc
}

// Index keeps recipe documents in one Elasticsearch index. Every search is
// filtered by owner.
type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

func NewIndex(es *elasticsearch.Client, index string) *Index {
	return &Index{es: es, index: index}
}

func docID(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (ix *Index) IndexRecipe(ctx context.Context, r *models.Recipe) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(NewDocument(r)); err != nil {
		return fmt.Errorf("index encode: %w", err)
	}

	res, err := ix.es.Index(
		ix.index,
		&buf,
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(docID(r.ID)),
	)
	if err != nil {
		return fmt.Errorf("index recipe: %w", err)
	}
	defer res.Body.Close()
	return responseErr("index recipe", res)
}

func (ix *Index) DeleteRecipe(ctx context.Context, id uint) error {
	res, err := ix.es.Delete(ix.index, docID(id), ix.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseErr("delete recipe", res)
}

func searchBody(owner uint, query string, from, size int) map[string]any {
	must := map[string]any{"match_all": map[string]any{}}
	if query != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description", "tags", "ingredients"},
				"fuzziness": "AUTO",
			},
		}
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": []any{map[string]any{"term": map[string]any{"user_id": owner}}},
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}
}

// Search returns the ids of the owner's matching recipes and the hit total.
func (ix *Index) Search(ctx context.Context, owner uint, query string, from, size int) ([]uint, int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(owner, query, from, size)); err != nil {
		return nil, 0, fmt.Errorf("search encode: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if err := responseErr("search", res); err != nil {
		return nil, 0, err
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID uint `json:"id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, 0, fmt.Errorf("search decode: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, r.Hits.Total.Value, nil
}

func responseErr(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
