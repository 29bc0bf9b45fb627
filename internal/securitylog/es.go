package securitylog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
)

// ESRecorder indexes security events into Elasticsearch so the admin
// dashboard can query them alongside the rest of the audit trail.
type ESRecorder struct {
	Client *elasticsearch.Client
	Index  string
}

func NewESRecorder(client *elasticsearch.Client, index string) *ESRecorder {
	return &ESRecorder{Client: client, Index: index}
}

func (r *ESRecorder) Record(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("securitylog: marshal event: %w", err)
	}

	res, err := r.Client.Index(
		r.Index,
		bytes.NewReader(data),
		r.Client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("securitylog: index event: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("securitylog: index event: %s", res.Status())
	}
	return nil
}

func (r *ESRecorder) CountRecentFailedLogins(ctx context.Context, email string, since time.Time) (int, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"type": string(EventFailedLogin)}},
					{"term": map[string]any{"userEmail": email}},
					{"range": map[string]any{"timestamp": map[string]any{"gte": since.Format(time.RFC3339)}}},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return 0, fmt.Errorf("securitylog: encode query: %w", err)
	}

	res, err := r.Client.Count(
		r.Client.Count.WithContext(ctx),
		r.Client.Count.WithIndex(r.Index),
		r.Client.Count.WithBody(&buf),
	)
	if err != nil {
		return 0, fmt.Errorf("securitylog: count query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("securitylog: count query: %s", res.Status())
	}

	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("securitylog: decode count response: %w", err)
	}
	return out.Count, nil
}
