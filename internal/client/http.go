package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crucial707/hci-itam/internal/models"
)

// DefaultTimeout bounds every store request.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements Store against the asset store's HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a client for baseURL (e.g. "http://localhost:8080").
// When token is non-empty it is sent as a bearer token on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *HTTPClient) List(ctx context.Context, category string) ([]RawRecord, error) {
	var out []RawRecord
	if err := c.doJSON(ctx, http.MethodGet, "/assets?"+categoryQuery(category), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the record stored under id, whatever its category.
func (c *HTTPClient) Get(ctx context.Context, id string) (RawRecord, error) {
	var out RawRecord
	if err := c.doJSON(ctx, http.MethodGet, "/assets/"+url.PathEscape(id), nil, &out); err != nil {
		return RawRecord{}, err
	}
	return out, nil
}

// Summary returns the store's counts for category.
func (c *HTTPClient) Summary(ctx context.Context, category string) (models.Summary, error) {
	var out models.Summary
	if err := c.doJSON(ctx, http.MethodGet, "/assets/summary?"+categoryQuery(category), nil, &out); err != nil {
		return models.Summary{}, err
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, rec RawRecord) (RawRecord, error) {
	var out RawRecord
	if err := c.doJSON(ctx, http.MethodPost, "/assets", rec, &out); err != nil {
		return RawRecord{}, err
	}
	return out, nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, rec RawRecord) (RawRecord, error) {
	var out RawRecord
	if err := c.doJSON(ctx, http.MethodPut, "/assets/"+url.PathEscape(id), rec, &out); err != nil {
		return RawRecord{}, err
	}
	return out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/assets/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) BulkDelete(ctx context.Context, category string) (BulkDeleteResult, error) {
	var out BulkDeleteResult
	if err := c.doJSON(ctx, http.MethodDelete, "/assets?"+categoryQuery(category), nil, &out); err != nil {
		return BulkDeleteResult{}, err
	}
	return out, nil
}

// ImportRows uploads file as multipart form field "file".
func (c *HTTPClient) ImportRows(ctx context.Context, category, filename string, file io.Reader) (ImportResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return ImportResult{}, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return ImportResult{}, fmt.Errorf("reading import file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ImportResult{}, fmt.Errorf("closing multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/assets/import?"+categoryQuery(category), &body, mw.FormDataContentType())
	if err != nil {
		return ImportResult{}, err
	}
	var out ImportResult
	if err := decode(resp, &out); err != nil {
		return ImportResult{}, err
	}
	return out, nil
}

// DownloadTemplate returns the CSV import template for category.
func (c *HTTPClient) DownloadTemplate(ctx context.Context, category string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/assets/template?"+categoryQuery(category), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "reading response", Err: err}
	}
	return data, nil
}

// --- internal helpers ---

func categoryQuery(category string) string {
	return url.Values{"category": {category}}.Encode()
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into result. A nil result discards the body.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	}
	resp, err := c.do(ctx, method, path, bodyReader, contentType)
	if err != nil {
		return err
	}
	return decode(resp, result)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	return resp, nil
}

func decode(resp *http.Response, result any) error {
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNoContent || result == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "reading response", Err: err}
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// checkStatus turns a 4xx/5xx response into a *StoreError using the store's
// {"error": "..."} body when present.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	data, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
		return &StoreError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &StoreError{StatusCode: resp.StatusCode, Message: msg}
}
