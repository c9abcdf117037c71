package ocr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPResolver posts the captcha image URL to a recognition endpoint that
// answers with the plain-text code.
type HTTPResolver struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPResolver(endpoint string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPResolver{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) Resolve(ctx context.Context, imageURL string) (string, error) {
	if strings.TrimSpace(r.Endpoint) == "" {
		return "", fmt.Errorf("ocr endpoint not configured")
	}
	form := url.Values{"url": {imageURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := r.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ocr status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	code := strings.TrimSpace(string(body))
	if code == "" {
		return "", fmt.Errorf("ocr returned empty code")
	}
	return code, nil
}
