package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const formattedValuePrefer = `odata.include-annotations="OData.Community.Display.V1.FormattedValue"`

// Config holds what the client needs to authenticate and reach the API.
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scope        string
	BaseURL      string
	Timeout      time.Duration
}

// Client acquires tokens and hands out authenticated Queries.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Connect requests a fresh client-credentials token and returns Queries
// bound to it. Tokens are not cached between calls.
func (c *Client) Connect(ctx context.Context) (*Queries, error) {
	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.TokenURL,
		Scopes:       []string{c.cfg.Scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	authed := &http.Client{
		Timeout: c.http.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(tok),
			Base:   c.http.Transport,
		},
	}
	return NewQueries(authed, c.cfg.BaseURL, c.log), nil
}

// Queries issues OData requests with an already authorised HTTP client.
type Queries struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

func NewQueries(httpClient *http.Client, baseURL string, log *zap.Logger) *Queries {
	return &Queries{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

func (q *Queries) newRequest(ctx context.Context, method, path string, query Query, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+"/"+path+query.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("Prefer", formattedValuePrefer)
	return req, nil
}

// get decodes the JSON body of a GET into out.
func (q *Queries) get(ctx context.Context, path string, query Query, out any) error {
	req, err := q.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	resp, err := q.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// list decodes an OData collection response.
func list[T any](ctx context.Context, q *Queries, path string, query Query) ([]T, error) {
	var page struct {
		Value []T `json:"value"`
	}
	if err := q.get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	if page.Value == nil {
		return []T{}, nil
	}
	return page.Value, nil
}

// post creates a record and decodes the returned representation into out.
func (q *Queries) post(ctx context.Context, path string, body any, out any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s body: %w", path, err)
	}

	req, err := q.newRequest(ctx, http.MethodPost, path, Query{}, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Prefer", "return=representation,"+formattedValuePrefer)

	resp, err := q.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readError(resp, path)
	}

	entityID := resp.Header.Get("OData-EntityId")
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return entityID, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return entityID, nil
}

// value fetches the raw bytes behind a path such as a file column's $value.
func (q *Queries) value(ctx context.Context, path string) ([]byte, string, error) {
	req, err := q.newRequest(ctx, http.MethodGet, path, Query{}, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := q.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", readError(resp, path)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
