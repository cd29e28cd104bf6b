package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Tokens are refreshed this long before their reported expiry.
const tokenExpirySkew = 5 * time.Minute

// tokenSource fetches and caches an OAuth2 client-credentials token.
// The token endpoint authenticates with HTTP Basic.
type tokenSource struct {
	client       *http.Client
	tokenURL     string
	clientID     string
	clientSecret string

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

func newTokenSource(tokenURL, clientID, clientSecret string) *tokenSource {
	return &tokenSource{
		client:       &http.Client{Timeout: 30 * time.Second},
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Token returns a cached token while it is fresh, otherwise fetches a
// new one. Freshness includes the expiry skew.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && time.Now().Before(t.expiry.Add(-tokenExpirySkew)) {
		return t.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", transportError("oauth", err)
	}
	req.SetBasicAuth(t.clientID, t.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "*/*")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", transportError("oauth", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("oauth", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", newStatusError("oauth", resp.StatusCode, data)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", transportError("oauth", err)
	}
	if result.AccessToken == "" {
		return "", &APIError{Provider: "oauth", Kind: KindAuth, Message: "token response had no access_token"}
	}
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = 3600
	}

	t.accessToken = result.AccessToken
	t.expiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return t.accessToken, nil
}

// Invalidate drops the cached token so the next call fetches a fresh
// one. Called before the auth retry.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	t.accessToken = ""
	t.expiry = time.Time{}
	t.mu.Unlock()
}
