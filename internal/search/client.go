// File path: internal/search/client.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mtorres-dev/hackmate/internal/common"
)

// Backend is the contract the rest of the system has with the search
// engine: hybrid retrieval plus the document write path.
type Backend interface {
	HybridSearch(ctx context.Context, index string, opts Options) Result
	IndexDoc(ctx context.Context, index, id string, doc map[string]interface{}) error
	BulkIndex(ctx context.Context, index string, docs []map[string]interface{}) error
	Health(ctx context.Context) error
}

// Config holds the search backend connection settings.
type Config struct {
	Address    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

const (
	// vectorField is the storage-only embedding field present on every
	// indexed document. It is excluded from all query responses.
	vectorField = "embedding"
	// knnCandidateFactor widens the kNN candidate pool relative to the
	// requested size so ranking has recall headroom.
	knnCandidateFactor = 10
)

// Client is a thin Elasticsearch REST client. It never surfaces backend
// errors through the hybrid search path: a failed combined query retries
// once as pure lexical search, and a failed retry yields an empty result.
type Client struct {
	httpClient *http.Client
	transport  *http.Transport
	baseURL    string
	apiKey     string
	maxRetries int
}

// NewClient constructs a client using the provided configuration.
func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.Address) == "" {
		cfg.Address = "http://localhost:9200"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	transport := &http.Transport{
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	common.Logger().Info("search: initializing client", "address", cfg.Address, "timeout", cfg.Timeout)
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		transport:  transport,
		baseURL:    strings.TrimRight(cfg.Address, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
	}
}

// HybridSearch runs a lexical+vector query against one index. The scoring
// policy follows the backend's fusion: both legs carry equal boost. Degraded
// modes: vector-only kNN, text-only multi_match, match_all browse.
func (c *Client) HybridSearch(ctx context.Context, index string, opts Options) Result {
	logger := common.Logger()
	if opts.Size <= 0 {
		opts.Size = 10
	}
	if len(opts.Fields) == 0 {
		opts.Fields = []string{"title", "description", "content"}
	}
	body := buildSearchBody(opts)
	result, err := c.search(ctx, index, body)
	if err == nil {
		return result
	}
	logger.Warn("search: hybrid query failed, retrying lexical only", "index", index, "error", err)
	fallback := buildSearchBody(Options{Query: opts.Query, Fields: opts.Fields, Size: opts.Size})
	result, err = c.search(ctx, index, fallback)
	if err != nil {
		logger.Error("search: lexical fallback failed", "index", index, "error", err)
		return Result{}
	}
	return result
}

// buildSearchBody assembles the query DSL for the requested mode.
func buildSearchBody(opts Options) map[string]interface{} {
	body := map[string]interface{}{
		"size":    opts.Size,
		"_source": map[string]interface{}{"excludes": []string{vectorField}},
	}
	lexical := map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":  opts.Query,
			"fields": opts.Fields,
			"type":   "best_fields",
		},
	}
	switch {
	case opts.Query != "" && len(opts.Vector) > 0:
		lexical["multi_match"].(map[string]interface{})["boost"] = 1.0
		body["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{lexical},
			},
		}
		body["knn"] = map[string]interface{}{
			"field":          vectorField,
			"query_vector":   opts.Vector,
			"k":              opts.Size,
			"num_candidates": opts.Size * knnCandidateFactor,
			"boost":          1.0,
		}
	case len(opts.Vector) > 0:
		body["knn"] = map[string]interface{}{
			"field":          vectorField,
			"query_vector":   opts.Vector,
			"k":              opts.Size,
			"num_candidates": opts.Size * knnCandidateFactor,
		}
	case opts.Query != "":
		body["query"] = lexical
	default:
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return body
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                 `json:"_id"`
			Index  string                 `json:"_index"`
			Score  *float64               `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) search(ctx context.Context, index string, body map[string]interface{}) (Result, error) {
	endpoint := fmt.Sprintf("%s/%s/_search", c.baseURL, url.PathEscape(index))
	var resp searchResponse
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return Result{}, err
	}
	result := Result{Total: resp.Hits.Total.Value}
	if resp.Hits.MaxScore != nil {
		result.MaxScore = *resp.Hits.MaxScore
	}
	for _, hit := range resp.Hits.Hits {
		score := 0.0
		if hit.Score != nil {
			score = *hit.Score
		}
		result.Hits = append(result.Hits, Hit{
			ID:     hit.ID,
			Index:  hit.Index,
			Score:  score,
			Source: hit.Source,
		})
	}
	if result.Total == 0 {
		result.Total = len(result.Hits)
	}
	return result, nil
}

// IndexDoc upserts a single document under a caller-chosen id, making
// repeated deliveries of the same document idempotent.
func (c *Client) IndexDoc(ctx context.Context, index, id string, doc map[string]interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/_doc/%s", c.baseURL, url.PathEscape(index), url.PathEscape(id))
	return c.doRequest(ctx, http.MethodPut, endpoint, doc, nil)
}

// BulkIndex writes documents through the bulk endpoint. Documents carrying
// an "id" field keep it as their document id.
func (c *Client) BulkIndex(ctx context.Context, index string, docs []map[string]interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, doc := range docs {
		action := map[string]interface{}{"index": map[string]interface{}{"_index": index}}
		if id, ok := doc["id"].(string); ok && id != "" {
			action["index"].(map[string]interface{})["_id"] = id
		}
		if err := json.NewEncoder(&buf).Encode(action); err != nil {
			return err
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return err
		}
	}
	endpoint := c.baseURL + "/_bulk"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("search: bulk index failed: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// CreateIndex creates an index with an explicit mapping. Existing indices
// are left untouched.
func (c *Client) CreateIndex(ctx context.Context, index string, mapping map[string]interface{}) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(index))
	err := c.doRequest(ctx, http.MethodPut, endpoint, map[string]interface{}{"mappings": mapping}, nil)
	if errors.Is(err, errConflict) {
		return nil
	}
	return err
}

// Health checks cluster health; green and yellow count as healthy.
func (c *Client) Health(ctx context.Context) error {
	endpoint := c.baseURL + "/_cluster/health"
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "green" && resp.Status != "yellow" {
		return fmt.Errorf("search: cluster status %q", resp.Status)
	}
	return nil
}

var (
	errNotFound = errors.New("resource not found")
	errConflict = errors.New("resource conflict")
)

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	if c == nil {
		return errors.New("search client not configured")
	}
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = data
	}
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		c.authorize(req)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport-level failure: retry with backoff.
			lastErr = err
			continue
		}
		// HTTP-level outcomes are definitive; only transport errors retry.
		return decodeResponse(resp, method, endpoint, out)
	}
	return lastErr
}

func decodeResponse(resp *http.Response, method, endpoint string, out interface{}) error {
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusConflict:
		return errConflict
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("search: %s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	}
}

// Close releases pooled transport resources.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	return nil
}

var _ Backend = (*Client)(nil)
