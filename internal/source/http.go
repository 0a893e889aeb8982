package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aidanlsb/tabula/internal/record"
)

// HTTPSource reads from the database REST API:
//
//	GET {base}/api/database/tables
//	GET {base}/api/database/schema/{table}
//	GET {base}/api/database/data/{table}
//	GET {base}/api/database/primary-keys
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource returns a source for the API rooted at baseURL.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (s *HTTPSource) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	if err := s.get(ctx, "/api/database/tables", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *HTTPSource) GetSchema(ctx context.Context, table string) ([]Column, error) {
	var cols []Column
	if err := s.get(ctx, "/api/database/schema/"+url.PathEscape(table), &cols); err != nil {
		return nil, err
	}
	return cols, nil
}

func (s *HTTPSource) GetRows(ctx context.Context, table string) ([]record.Record, error) {
	var rows []record.Record
	if err := s.get(ctx, "/api/database/data/"+url.PathEscape(table), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *HTTPSource) GetRelations(ctx context.Context) ([]Relation, error) {
	var rels []Relation
	if err := s.get(ctx, "/api/database/primary-keys", &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}
