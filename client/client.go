// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/models"
	"github.com/danielhkuo/properview/view"
)

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client talks to a ProperView API server
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends an agent session token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server address without a trailing slash
func (c *Client) BaseURL() string { return c.baseURL }

// Listings fetches the listings page for a raw query string such as
// "location=austin&view=map". The leading "?" is optional.
func (c *Client) Listings(ctx context.Context, rawQuery string) (view.Page, error) {
	path := "/listings"
	if q := strings.TrimPrefix(rawQuery, "?"); q != "" {
		path += "?" + q
	}
	var page view.Page
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

// Listing fetches one listing with its agent and photos
func (c *Client) Listing(ctx context.Context, id string) (models.ListingDetail, error) {
	var detail models.ListingDetail
	err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &detail)
	return detail, err
}

// Login looks the agent up by name and keeps the returned token for later calls
func (c *Client) Login(ctx context.Context, name string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Name: name}, &resp); err != nil {
		return resp, err
	}
	c.token = resp.Token
	return resp, nil
}

// Inquire sends a visitor inquiry for a listing
func (c *Client) Inquire(ctx context.Context, listingID string, req models.CreateInquiryRequest) (models.CreateInquiryResponse, error) {
	var resp models.CreateInquiryResponse
	err := c.do(ctx, http.MethodPost, "/listings/"+url.PathEscape(listingID)+"/inquiries", req, &resp)
	return resp, err
}

// Summary returns the logged-in agent's dashboard counts
func (c *Client) Summary(ctx context.Context) (models.DashboardSummary, error) {
	var summary models.DashboardSummary
	err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, &summary)
	return summary, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
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
		req.Header.Set(auth.HeaderToken, c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
