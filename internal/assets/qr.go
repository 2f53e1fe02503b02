package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// QR renders QR codes through an external HTTP renderer that accepts the
// payload in a "text" query parameter and answers with an image.
type QR struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
}

func NewQR(endpoint string, timeout time.Duration, log *zap.Logger) *QR {
	return &QR{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}
}

// Render returns the QR code for text as a data URI, or nil when text is
// empty, no renderer is configured, or the renderer fails.
func (q *QR) Render(ctx context.Context, text string) *string {
	if q == nil || q.endpoint == "" || text == "" {
		return nil
	}

	uri, err := q.render(ctx, text)
	if err != nil {
		q.log.Warn("QR code render failed", zap.Error(err))
		return nil
	}
	return &uri
}

func (q *QR) render(ctx context.Context, text string) (string, error) {
	u, err := url.Parse(q.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid QR endpoint: %w", err)
	}
	params := u.Query()
	params.Set("text", text)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := q.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("QR renderer returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return DataURI(data, resp.Header.Get("Content-Type")), nil
}
