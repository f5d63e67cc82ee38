// Package metadata implements the metadata-store client. The store is
// reachable through a single HTTP POST endpoint multiplexed by a request-kind
// field ("httpMethod" in the envelope, kept for wire compatibility with the
// deployed endpoint). Responses nest their payload as a JSON-encoded string
// inside the outer envelope, so every read is a double decode.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/imagedrive/internal/logging"
	"github.com/google/uuid"
)

// Kind selects one of the logical operations multiplexed over the endpoint.
type Kind string

const (
	KindList   Kind = "GET"
	KindCreate Kind = "POST"
	KindDelete Kind = "DELETE"
)

// ErrorKind classifies metadata-store failures.
type ErrorKind string

const (
	ErrKindNetwork ErrorKind = "network"
	ErrKindDecode  ErrorKind = "decode"
	ErrKindStatus  ErrorKind = "status"
)

// Error is a classified metadata-store failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("metadata: %s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Record is one row of the metadata listing. The store returns positional
// arrays; only description (index 1), creation date (index 3) and key
// (index 6) are interpreted. Raw retains the full row unexamined so that
// columns this client does not understand survive a round trip.
type Record struct {
	Key         string
	Description string
	CreatedAt   string
	Raw         []json.RawMessage
}

// envelope is the outer response shape. Data is itself JSON, encoded as a
// string.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
	Data       string `json:"data"`
}

type deleteResult struct {
	Success string `json:"success"`
}

// Client talks to the single metadata endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	log        logging.Logger
}

func NewClient(url string, log logging.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{},
		log:        log.With("module", "metadata_client"),
	}
}

// invoke posts one kind-tagged request and returns the decoded outer
// envelope. The HTTP status is not treated as an error by itself: the
// endpoint answers 403 with a well-formed envelope on a rejected delete.
func (c *Client) invoke(ctx context.Context, payload map[string]any) (*envelope, error) {
	reqID := uuid.NewString()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: ErrKindDecode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: ErrKindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug(ctx, "invoking metadata endpoint", "kind", payload["httpMethod"], "req_id", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrKindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &Error{Kind: ErrKindStatus, Err: fmt.Errorf("endpoint status %d", resp.StatusCode)}
	}

	env := &envelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, &Error{Kind: ErrKindDecode, Err: err}
	}

	return env, nil
}

// List returns the full, unfiltered record set. There is no server-side
// filtering; callers join client-side.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	env, err := c.invoke(ctx, map[string]any{"httpMethod": string(KindList)})
	if err != nil {
		return nil, err
	}

	// inner decode: the data field is a JSON string of an array of
	// positional arrays
	var rows [][]json.RawMessage
	if err := json.Unmarshal([]byte(env.Data), &rows); err != nil {
		return nil, &Error{Kind: ErrKindDecode, Err: err}
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if len(row) < 7 {
			return nil, &Error{Kind: ErrKindDecode, Err: fmt.Errorf("row %d has %d columns, want at least 7", i, len(row))}
		}

		r := Record{Raw: row}
		if err := json.Unmarshal(row[1], &r.Description); err != nil {
			return nil, &Error{Kind: ErrKindDecode, Err: fmt.Errorf("row %d description: %w", i, err)}
		}
		if err := json.Unmarshal(row[3], &r.CreatedAt); err != nil {
			return nil, &Error{Kind: ErrKindDecode, Err: fmt.Errorf("row %d date: %w", i, err)}
		}
		if err := json.Unmarshal(row[6], &r.Key); err != nil {
			return nil, &Error{Kind: ErrKindDecode, Err: fmt.Errorf("row %d key: %w", i, err)}
		}

		records = append(records, r)
	}

	return records, nil
}

// Create registers a metadata row: key, description and the delete password
// (hashed by the store, never by this client).
func (c *Client) Create(ctx context.Context, key, description, password string) error {
	env, err := c.invoke(ctx, map[string]any{
		"httpMethod": string(KindCreate),
		"updated_id": key,
		"title":      description,
		"password":   password,
	})
	if err != nil {
		return err
	}

	if env.StatusCode != http.StatusOK {
		return &Error{Kind: ErrKindStatus, Err: fmt.Errorf("create rejected with status %d: %s", env.StatusCode, env.Body)}
	}

	return nil
}

// Remove asks the store to delete the row for key, authorized by password.
// The store is the sole password authority: the boolean result reports
// whether it answered success "y". Only a true result may be followed by a
// blob delete.
func (c *Client) Remove(ctx context.Context, key, password string) (bool, error) {
	env, err := c.invoke(ctx, map[string]any{
		"httpMethod": string(KindDelete),
		"updated_id": key,
		"password":   password,
	})
	if err != nil {
		return false, err
	}

	var res deleteResult
	if err := json.Unmarshal([]byte(env.Data), &res); err != nil {
		return false, &Error{Kind: ErrKindDecode, Err: err}
	}

	return res.Success == "y", nil
}
