package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"vaultsync/internal/config"
	"vaultsync/internal/contextutil"
)

// HTTPClient talks to the Chroma REST API. It implements Client.
type HTTPClient struct {
	baseURL     string
	tokenHeader string
	tokenValue  string
	tenant      string
	database    string
	client      *http.Client
}

// NewHTTPClient creates a client for the store described by cfg.
func NewHTTPClient(cfg *config.Chroma) *HTTPClient {
	scheme := "http"
	if cfg.SSL {
		scheme = "https"
	}

	// An Authorization token header gets the standard Bearer prefix;
	// any other header name carries the token verbatim.
	header := cfg.TokenHeader
	value := cfg.Token
	if header == "" {
		header = "Authorization"
	}
	if header == "Authorization" {
		value = "Bearer " + cfg.Token
	}

	return &HTTPClient{
		baseURL:     fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		tokenHeader: header,
		tokenValue:  value,
		tenant:      cfg.Tenant,
		database:    cfg.Database,
		client:      http.DefaultClient,
	}
}

// collectionModel is the API representation of a collection.
type collectionModel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCollections returns the names of all collections in the configured
// tenant/database.
func (c *HTTPClient) ListCollections(ctx context.Context) ([]string, error) {
	var cols []collectionModel
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections", nil, &cols); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	return names, nil
}

// GetCollection returns a handle to an existing collection.
func (c *HTTPClient) GetCollection(ctx context.Context, name string) (Collection, error) {
	var col collectionModel
	err := c.do(ctx, http.MethodGet, "/api/v1/collections/"+url.PathEscape(name), nil, &col)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("collection %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get collection %q: %w", name, err)
	}
	return &httpCollection{client: c, id: col.ID, name: col.Name}, nil
}

// CreateCollection creates a new collection and returns its handle.
func (c *HTTPClient) CreateCollection(ctx context.Context, name string) (Collection, error) {
	payload := map[string]any{"name": name}
	var col collectionModel
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections", payload, &col); err != nil {
		return nil, fmt.Errorf("failed to create collection %q: %w", name, err)
	}
	return &httpCollection{client: c, id: col.ID, name: col.Name}, nil
}

// GetOrCreateCollection returns an existing collection, creating it if it
// does not exist.
func (c *HTTPClient) GetOrCreateCollection(ctx context.Context, name string) (Collection, error) {
	col, err := c.GetCollection(ctx, name)
	if err == nil {
		return col, nil
	}
	return c.CreateCollection(ctx, name)
}

// httpCollection is a handle to one remote collection. It implements Collection.
type httpCollection struct {
	client *HTTPClient
	id     string
	name   string
}

// Name returns the collection name.
func (h *httpCollection) Name() string {
	return h.name
}

// Upsert inserts or replaces documents. The three slices are parallel.
func (h *httpCollection) Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert slices must be parallel: %d ids, %d documents, %d metadatas",
			len(ids), len(documents), len(metadatas))
	}

	payload := map[string]any{
		"ids":       ids,
		"documents": documents,
		"metadatas": metadatas,
	}
	if err := h.client.do(ctx, http.MethodPost, h.path("upsert"), payload, nil); err != nil {
		return fmt.Errorf("failed to upsert documents: %w", err)
	}
	return nil
}

// Delete removes documents by id.
func (h *httpCollection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	payload := map[string]any{"ids": ids}
	if err := h.client.do(ctx, http.MethodPost, h.path("delete"), payload, nil); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// Get fetches documents by id, or the full listing when ids is empty.
func (h *httpCollection) Get(ctx context.Context, ids []string) (*GetResult, error) {
	payload := map[string]any{
		"include": []string{"documents", "metadatas"},
	}
	if len(ids) > 0 {
		payload["ids"] = ids
	}

	var result GetResult
	if err := h.client.do(ctx, http.MethodPost, h.path("get"), payload, &result); err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	return &result, nil
}

// Count returns the number of documents in the collection.
func (h *httpCollection) Count(ctx context.Context) (int, error) {
	var count int
	if err := h.client.do(ctx, http.MethodGet, h.path("count"), nil, &count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (h *httpCollection) path(op string) string {
	return "/api/v1/collections/" + url.PathEscape(h.id) + "/" + op
}

// do performs one API request. Non-2xx responses become an *APIError;
// quota-exceeded responses additionally wrap ErrQuotaExceeded so callers
// can branch with errors.Is.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out any) error {
	logger := contextutil.LoggerFromContext(ctx)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(c.tokenHeader, c.tokenValue)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Tenant and database scope every call.
	q := req.URL.Query()
	if c.tenant != "" {
		q.Set("tenant", c.tenant)
	}
	if c.database != "" {
		q.Set("database", c.database)
	}
	req.URL.RawQuery = q.Encode()

	logger.Debug("chroma api request", "method", method, "path", path)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		if resp.StatusCode == http.StatusTooManyRequests || IsQuotaExceeded(apiErr) {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Error())
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
