package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qamaits/identity-server/internal/domain"
)

const sendTimeout = 15 * time.Second

// Transport delivers one encoded message through a provider.
type Transport interface {
	Send(ctx context.Context, raw string, link *domain.ProviderLink) error
}

// httpTransport posts the encoded message to the provider's send endpoint
// using the stored bearer access token.
type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport creates the production transport.
func NewHTTPTransport() Transport {
	return &httpTransport{
		client: &http.Client{Timeout: sendTimeout},
	}
}

func (t *httpTransport) Send(ctx context.Context, raw string, link *domain.ProviderLink) error {
	body, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	url := fmt.Sprintf("%s?alt=json&key=%s", link.SendEndpoint, link.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+link.AccessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider rejected message: %s: %s", resp.Status, detail)
	}
	return nil
}
