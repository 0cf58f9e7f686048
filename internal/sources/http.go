package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	maxAttempts    = 3

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0 Safari/537.36"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

func httpGet(ctx context.Context, client *http.Client, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(body, utf8BOM), nil
}

// fetchText retries transient transport failures up to maxAttempts.
// Parse failures happen after this layer and are deliberately not retried.
func fetchText(ctx context.Context, client *http.Client, urlStr string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := httpGet(ctx, client, urlStr)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func fetchJSON(ctx context.Context, client *http.Client, urlStr string, target any) error {
	body, err := fetchText(ctx, client, urlStr)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		snip := string(body)
		if len(snip) > 200 {
			snip = snip[:200]
		}
		return fmt.Errorf("decode json: %w (%s)", err, snip)
	}
	return nil
}
