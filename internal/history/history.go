// internal/history/history.go
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"startup-scoring/internal/common/database"
	apperrors "startup-scoring/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

type Kind string

const (
	KindValidationScore Kind = "validation_score"
	KindHealthScore     Kind = "health_score"
)

// Snapshot is one computed score stored for trend analysis.
type Snapshot struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	StartupID  string      `json:"startup_id"`
	Score      int         `json:"score"`
	Verdict    string      `json:"verdict,omitempty"`
	Details    interface{} `json:"details,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

type Recorder interface {
	Record(ctx context.Context, snap Snapshot) error
}

// NopRecorder is used when history is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Snapshot) error { return nil }

// Mapping is the index mapping for score snapshots. Details are stored but not indexed.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "kind":        {"type": "keyword"},
      "startup_id":  {"type": "keyword"},
      "score":       {"type": "integer"},
      "verdict":     {"type": "keyword"},
      "details":     {"type": "object", "enabled": false},
      "recorded_at": {"type": "date"}
    }
  }
}`

// Indexer writes and reads snapshots in one Elasticsearch index.
type Indexer struct {
	es     *database.ElasticsearchClient
	client *elasticsearch.Client
	index  string
}

func NewIndexer(es *database.ElasticsearchClient, index string) *Indexer {
	return &Indexer{es: es, client: es.Client, index: index}
}

// EnsureIndex creates the history index if it does not exist yet.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	return i.es.EnsureIndex(ctx, i.index, Mapping)
}

func (i *Indexer) Record(ctx context.Context, snap Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now().UTC()
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return apperrors.NewHistoryIndexFailedError(err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: snap.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewHistoryIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewHistoryIndexFailedError(responseError(res))
	}
	return nil
}

// Recent returns the latest snapshots for a startup, newest first. An empty
// kind returns every kind.
func (i *Indexer) Recent(ctx context.Context, startupID string, kind Kind, size int) ([]Snapshot, error) {
	filters := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"startup_id": startupID}},
	}
	if kind != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"kind": string(kind)}})
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"sort": []interface{}{
			map[string]interface{}{"recorded_at": map[string]interface{}{"order": "desc"}},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewExternalServiceError("elasticsearch", responseError(res))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Snapshot `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewExternalServiceError("elasticsearch", fmt.Errorf("decode search response: %w", err))
	}

	out := make([]Snapshot, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func responseError(res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	return fmt.Errorf("%s: %s", res.Status(), bytes.TrimSpace(msg))
}
