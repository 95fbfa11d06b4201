package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/hybridtechie/roundtable-ai/internal/domain/entities"
	"github.com/hybridtechie/roundtable-ai/pkg/config"
)

// Client calls the external knowledge-search service. Transient failures are
// retried with exponential backoff; the caller decides what a final failure
// means (the discussion augmenter degrades to an empty result set).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg *config.KnowledgeConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type searchRequest struct {
	UserID        string `json:"user_id"`
	ParticipantID string `json:"participant_id"`
	Query         string `json:"query"`
	TopK          int    `json:"top_k"`
}

type searchResponse struct {
	Results []struct {
		TextChunk       string  `json:"text_chunk"`
		SimilarityScore float64 `json:"similarity_score"`
	} `json:"results"`
}

// Search returns the participant's top-scoring knowledge chunks for a query.
func (c *Client) Search(ctx context.Context, userID, participantID, query string, topK int) ([]entities.KnowledgeItem, error) {
	body, err := json.Marshal(searchRequest{
		UserID:        userID,
		ParticipantID: participantID,
		Query:         query,
		TopK:          topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	var items []entities.KnowledgeItem
	operation := func() error {
		result, err := c.doSearch(ctx, body)
		if err != nil {
			return err
		}
		items = result
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) doSearch(ctx context.Context, body []byte) ([]entities.KnowledgeItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("knowledge search returned status %d: %s", resp.StatusCode, string(data))
		// Client-side errors will not heal on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode search response: %w", err))
	}

	items := make([]entities.KnowledgeItem, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		items = append(items, entities.KnowledgeItem{
			TextChunk:       r.TextChunk,
			SimilarityScore: r.SimilarityScore,
		})
	}
	return items, nil
}
