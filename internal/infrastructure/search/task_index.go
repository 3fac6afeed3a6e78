package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/todo-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

const taskMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "long"},
      "user_id":      {"type": "keyword"},
      "content":      {"type": "text"},
      "is_completed": {"type": "boolean"},
      "created_at":   {"type": "date"},
      "updated_at":   {"type": "date"}
    }
  }
}`

// TaskIndex mirrors tasks into a single Elasticsearch index.
type TaskIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	return &TaskIndex{ES: es, Index: index}
}

type taskDoc struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDoc(t entity.Task) taskDoc {
	return taskDoc{
		ID:          t.ID,
		UserID:      t.UserID,
		Content:     t.Content,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDoc) task() entity.Task {
	return entity.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Content:     d.Content,
		IsCompleted: d.IsCompleted,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// EnsureIndex creates the index with its mapping unless it already exists.
func (x *TaskIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Indices.Exists([]string{x.Index}, x.ES.Indices.Exists.WithContext(c))
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = x.ES.Indices.Create(x.Index,
		x.ES.Indices.Create.WithContext(c),
		x.ES.Indices.Create.WithBody(strings.NewReader(taskMapping)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", x.Index, res.Status())
	}
	return nil
}

// docVersion orders writes to one document. Deletes carry the deletion time so
// they outrank every update of the same task; zero means unversioned.
func docVersion(t entity.Task) int {
	switch {
	case t.DeletedAt != nil:
		return int(t.DeletedAt.UnixNano())
	case !t.UpdatedAt.IsZero():
		return int(t.UpdatedAt.UnixNano())
	}
	return 0
}

// IndexTask writes the document with an external version. A 409 means a newer
// write (or a delete tombstone) is already there, so the stale event is dropped.
func (x *TaskIndex) IndexTask(ctx context.Context, t entity.Task) error {
	b, err := json.Marshal(toDoc(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.Index,
		DocumentID: strconv.FormatInt(t.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	if v := docVersion(t); v > 0 {
		req.Version = &v
		req.VersionType = "external"
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusConflict {
		return fmt.Errorf("index task %d: %s", t.ID, res.Status())
	}
	return nil
}

// DeleteTask removes the document; a missing document is not an error.
func (x *TaskIndex) DeleteTask(ctx context.Context, t entity.Task) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	opts := []func(*esapi.DeleteRequest){x.ES.Delete.WithContext(c)}
	if v := docVersion(t); v > 0 {
		opts = append(opts, x.ES.Delete.WithVersion(v), x.ES.Delete.WithVersionType("external"))
	}
	res, err := x.ES.Delete(x.Index, strconv.FormatInt(t.ID, 10), opts...)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	switch {
	case !res.IsError(), res.StatusCode == http.StatusNotFound, res.StatusCode == http.StatusConflict:
		return nil
	}
	return fmt.Errorf("delete task %d: %s", t.ID, res.Status())
}

// SearchTasks matches query against content, restricted to userID's documents.
func (x *TaskIndex) SearchTasks(ctx context.Context, userID, query string, size int) ([]entity.Task, error) {
	must := map[string]any{"match_all": map[string]any{}}
	if strings.TrimSpace(query) != "" {
		must = map[string]any{"match": map[string]any{"content": query}}
	}
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must":   must,
				"filter": []any{map[string]any{"term": map[string]any{"user_id": userID}}},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", x.Index, res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source taskDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.task())
	}
	return out, nil
}
