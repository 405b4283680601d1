package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// QdrantStore implements the VectorStore interface against the Qdrant
// REST API.
type QdrantStore struct {
	Endpoint   string // e.g. http://localhost:6333
	HTTPClient *http.Client
}

// NewQdrantStore creates a Qdrant-backed vector store client.
func NewQdrantStore(endpoint string) *QdrantStore {
	return &QdrantStore{
		Endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnsureCollection makes sure the collection exists, creating it with
// the given dimension and cosine distance if needed.
func (store *QdrantStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/collections/%s", store.Endpoint, collection),
		nil,
	)

	if err != nil {
		return err
	}

	resp, err := store.HTTPClient.Do(req)

	if err != nil {
		return err
	}

	resp.Body.Close()

	// Collection exists
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	createPayload := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}

	createBody, err := json.Marshal(createPayload)

	if err != nil {
		return err
	}

	createReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		fmt.Sprintf("%s/collections/%s", store.Endpoint, collection),
		bytes.NewReader(createBody),
	)

	if err != nil {
		return err
	}

	createReq.Header.Set("Content-Type", "application/json")

	createResp, err := store.HTTPClient.Do(createReq)

	if err != nil {
		return err
	}

	createResp.Body.Close()

	if createResp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant: create collection status %d", createResp.StatusCode)
	}

	return nil
}

// Upsert writes points into the collection.
func (store *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	body := map[string]any{"points": make([]map[string]any, 0, len(points))}

	for _, point := range points {
		body["points"] = append(body["points"].([]map[string]any), map[string]any{
			"id":      point.ID,
			"vector":  point.Vector,
			"payload": point.Payload,
		})
	}

	encoded, err := json.Marshal(body)

	if err != nil {
		return fmt.Errorf("qdrant: marshal points: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points", store.Endpoint, collection),
		bytes.NewReader(encoded),
	)

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := store.HTTPClient.Do(req)

	if err != nil {
		return err
	}

	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant: upsert status %d", resp.StatusCode)
	}

	return nil
}

// Search performs a vector similarity search, returning points ranked
// by the store's native score.
func (store *QdrantStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]ScoredPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	encoded, err := json.Marshal(body)

	if err != nil {
		return nil, fmt.Errorf("qdrant: marshal search: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", store.Endpoint, collection),
		bytes.NewReader(encoded),
	)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := store.HTTPClient.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qdrant: search status %d", resp.StatusCode)
	}

	var out struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("qdrant: decode search response: %w", err)
	}

	points := make([]ScoredPoint, 0, len(out.Result))

	for _, item := range out.Result {
		points = append(points, ScoredPoint{
			ID:      item.ID,
			Score:   item.Score,
			Payload: item.Payload,
		})
	}

	return points, nil
}

// Scroll returns points whose conversation payload text-matches the
// query, in the store's native scan order. No ranking is implied.
func (store *QdrantStore) Scroll(ctx context.Context, collection string, queryText string, limit int) ([]ScoredPoint, error) {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   payloadConversation,
					"match": map[string]any{"text": queryText},
				},
			},
		},
		"limit":        limit,
		"with_payload": true,
	}

	encoded, err := json.Marshal(body)

	if err != nil {
		return nil, fmt.Errorf("qdrant: marshal scroll: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/scroll", store.Endpoint, collection),
		bytes.NewReader(encoded),
	)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := store.HTTPClient.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qdrant: scroll status %d", resp.StatusCode)
	}

	var out struct {
		Result struct {
			Points []struct {
				ID      string         `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
		} `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("qdrant: decode scroll response: %w", err)
	}

	points := make([]ScoredPoint, 0, len(out.Result.Points))

	for _, item := range out.Result.Points {
		points = append(points, ScoredPoint{
			ID:      item.ID,
			Payload: item.Payload,
		})
	}

	return points, nil
}
