package spotify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/catalog"
)

// tokenSource obtains and caches a client-credentials access token.
type tokenSource struct {
	url          string
	clientID     string
	clientSecret string
	http         *http.Client
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid bearer token, refreshing it a minute before expiry.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expires) {
		return s.token, nil
	}
	if s.clientID == "" || s.clientSecret == "" {
		return "", errors.New("spotify client credentials are not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "build token request")
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", catalog.Unavailable(err, "spotify token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := errors.Newf("HTTP %d: %s", resp.StatusCode, body)
		if resp.StatusCode >= 500 {
			return "", catalog.Unavailable(err, "spotify token")
		}
		return "", errors.Wrap(err, "spotify token rejected")
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", catalog.Unavailable(err, "decode spotify token")
	}
	if tr.AccessToken == "" {
		return "", catalog.Unavailable(nil, "spotify token response carried no access token")
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl > time.Minute {
		ttl -= time.Minute
	}
	s.token = tr.AccessToken
	s.expires = s.now().Add(ttl)
	return s.token, nil
}

func (s *tokenSource) authorize(req *http.Request) error {
	tok, err := s.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}
