// Package client talks to the products API over HTTP.
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
	"strconv"
	"strings"
	"time"

	"product-inventory/internal/products"
)

const (
	productsPath    = "/products"
	contentTypeJSON = "application/json"
)

// APIError is a non-2xx response. Message is the server's text, verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api responded with status %d", e.StatusCode)
	}
	return e.Message
}

// Is lets callers match a 404 against products.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == products.ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Page struct {
	Data  []products.Product `json:"data"`
	Total int64              `json:"total"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) List(ctx context.Context, page, limit int) (Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out Page
	if err := c.do(ctx, http.MethodGet, productsPath+"?"+q.Encode(), nil, &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (products.Product, error) {
	var out products.Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, &out); err != nil {
		return products.Product{}, err
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in products.Input) (products.Product, error) {
	var out products.Product
	if err := c.do(ctx, http.MethodPost, productsPath, in, &out); err != nil {
		return products.Product{}, err
	}
	return out, nil
}

func (c *Client) Update(ctx context.Context, id int64, in products.Input) (products.Product, error) {
	var out products.Product
	if err := c.do(ctx, http.MethodPut, productPath(id), in, &out); err != nil {
		return products.Product{}, err
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func productPath(id int64) string {
	return productsPath + "/" + strconv.FormatInt(id, 10)
}

// Message returns the server's text for API errors and fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
