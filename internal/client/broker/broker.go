// Package broker implements the credential broker client: a pool identifier
// goes in, time-limited blob-store credentials come out. The exchange happens
// exactly once per session; failures are surfaced to the caller and never
// retried here, so a failed acquisition leaves the whole client "not ready"
// until it is re-initialized.
package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/imagedrive/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials are the time-limited blob-store credentials issued by the
// broker.
type Credentials struct {
	AccessKeyID     string    `json:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key"`
	SessionToken    string    `json:"session_token"`
	Expiration      time.Time `json:"expiration"`
}

// Expired reports whether the credentials are no longer usable at the given
// instant. Credentials without a known expiration never expire.
func (c *Credentials) Expired(now time.Time) bool {
	return !c.Expiration.IsZero() && now.After(c.Expiration)
}

// Client exchanges an identity pool identifier for Credentials.
type Client struct {
	url        string
	poolID     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(url, poolID string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		poolID:     poolID,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type acquireRequest struct {
	IdentityPoolID string `json:"identity_pool_id"`
}

// Acquire performs the one-shot credential exchange. It is expected to be
// called once at session start. Any failure wraps common.ErrCredentials.
//
// When the broker response carries no explicit expiration but the session
// token is a JWT, the token's exp claim is used instead, so that callers can
// refuse operations on stale credentials rather than fail inside the SDK.
func (c *Client) Acquire(ctx context.Context) (*Credentials, error) {

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(acquireRequest{IdentityPoolID: c.poolID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCredentials, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCredentials, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCredentials, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: broker responded with status %d", common.ErrCredentials, resp.StatusCode)
	}

	creds := &Credentials{}
	if err := json.NewDecoder(resp.Body).Decode(creds); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", common.ErrCredentials, err)
	}

	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: broker returned incomplete credentials", common.ErrCredentials)
	}

	if creds.Expiration.IsZero() {
		creds.Expiration = tokenExpiration(creds.SessionToken)
	}

	if creds.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: broker returned already-expired credentials", common.ErrCredentials)
	}

	return creds, nil
}

// tokenExpiration extracts the exp claim from a JWT session token without
// verifying the signature (the broker is trusted; only the timestamp is of
// interest). Returns the zero time when the token is not a parseable JWT or
// carries no exp claim.
func tokenExpiration(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
