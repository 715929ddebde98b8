// README: REST client for the remote pricing backend (fare estimate + tier CRUD).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"guava/internal/modules/pricing"
)

// DefaultTimeout bounds every backend call; a timed-out call is an ordinary failure.
const DefaultTimeout = 10 * time.Second

// GenericErrorMessage is shown when the backend rejects a request without saying why.
const GenericErrorMessage = "Something went wrong. Please try again."

var (
	// ErrMalformed means the backend answered 2xx but the body was unusable.
	ErrMalformed = errors.New("malformed backend response")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// UserMessage returns the backend's own message when present, else a generic one.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for baseURL. token, when set, is sent as a bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type fareEstimateResponse struct {
	FinalTotal *float64           `json:"finalTotal"`
	Breakdown  *pricing.Breakdown `json:"breakdown"`
	pricing.FareFields
}

// EstimateFare asks the backend for a quote. A response without a numeric finalTotal
// is reported as ErrMalformed.
func (c *Client) EstimateFare(ctx context.Context, req pricing.FareEstimateRequest) (pricing.FareQuote, error) {
	var resp fareEstimateResponse
	if err := c.do(ctx, http.MethodPost, "/api/fare/estimate", req, &resp); err != nil {
		return pricing.FareQuote{}, err
	}
	if resp.FinalTotal == nil {
		return pricing.FareQuote{}, fmt.Errorf("%w: missing finalTotal", ErrMalformed)
	}
	q := pricing.FareQuote{FinalTotal: *resp.FinalTotal}
	if resp.Breakdown != nil {
		q.Breakdown = *resp.Breakdown
	} else {
		q.Breakdown = pricing.SynthesizeBreakdown(resp.FareFields, *resp.FinalTotal)
	}
	return q, nil
}

func (c *Client) ListTiers(ctx context.Context, st pricing.ServiceType) ([]pricing.Tier, error) {
	var tiers []pricing.Tier
	if err := c.do(ctx, http.MethodGet, "/tiers/"+url.PathEscape(string(st)), nil, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

func (c *Client) UpsertTier(ctx context.Context, t pricing.Tier) (pricing.Tier, error) {
	var saved pricing.Tier
	if err := c.do(ctx, http.MethodPost, "/tiers", t, &saved); err != nil {
		return pricing.Tier{}, err
	}
	return saved, nil
}

func (c *Client) ReplaceTiers(ctx context.Context, st pricing.ServiceType, tiers []pricing.Tier) error {
	return c.do(ctx, http.MethodPut, "/tiers/bulk/"+url.PathEscape(string(st)), tiers, nil)
}

func (c *Client) DeleteTier(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tiers/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
