// Package client is a Go client for the book store API. Every failed call
// returns an *Error carrying a human-readable message and, when the server
// answered, its HTTP status.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/inkwell/bookstore/pkg/version"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

const (
	DefaultTimeout = 10 * time.Second

	genericMessage = "Something went wrong"
)

// Error is the single failure shape of the client.
type Error struct {
	Message string
	Status  int
	Details []errcodes.FieldError
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New returns a client for the API served at baseURL, e.g.
// "http://localhost:5000". A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListParams are the list filters. Zero values are left out of the query so
// the server defaults apply.
type ListParams struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	Genre    string
	Search   string
	MinPrice *float64
	MaxPrice *float64
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.Genre != "" {
		v.Set("genre", p.Genre)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	return v
}

type BookList struct {
	Books      []*models.Book
	Count      int
	Pagination books.Pagination
}

type Health struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Count      int               `json:"count"`
	Data       json.RawMessage   `json:"data"`
	Pagination *books.Pagination `json:"pagination"`
}

type errorEnvelope struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Details []errcodes.FieldError `json:"details"`
}

func (c *Client) ListBooks(ctx context.Context, params ListParams) (*BookList, error) {
	list := &BookList{Books: []*models.Book{}}
	env, err := c.do(ctx, http.MethodGet, "/api/books", params.values(), nil, &list.Books)
	if err != nil {
		return nil, err
	}
	list.Count = env.Count
	if env.Pagination != nil {
		list.Pagination = *env.Pagination
	}
	return list, nil
}

func (c *Client) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}
	if _, err := c.do(ctx, http.MethodGet, "/api/books/"+url.PathEscape(id), nil, nil, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (c *Client) CreateBook(ctx context.Context, fields books.Fields) (*models.Book, error) {
	book := &models.Book{}
	if _, err := c.do(ctx, http.MethodPost, "/api/books", nil, fields, book); err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateBook sends only the non-nil fields.
func (c *Client) UpdateBook(ctx context.Context, id string, fields books.Fields) (*models.Book, error) {
	book := &models.Book{}
	if _, err := c.do(ctx, http.MethodPut, "/api/books/"+url.PathEscape(id), nil, fields, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook returns the id of the deleted book.
func (c *Client) DeleteBook(ctx context.Context, id string) (string, error) {
	deleted := books.DeletedBook{}
	if _, err := c.do(ctx, http.MethodDelete, "/api/books/"+url.PathEscape(id), nil, nil, &deleted); err != nil {
		return "", err
	}
	return deleted.ID, nil
}

func (c *Client) Stats(ctx context.Context) (*books.Stats, error) {
	stats := &books.Stats{}
	if _, err := c.do(ctx, http.MethodGet, "/api/books/stats", nil, nil, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Health isn't wrapped in the success envelope.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	body, err := c.send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, err
	}
	health := &Health{}
	if err := json.Unmarshal(body, health); err != nil {
		return nil, &Error{Message: err.Error(), Status: http.StatusOK}
	}
	return health, nil
}

// do sends the request and unwraps the success envelope, decoding its data
// into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) (*envelope, error) {
	body, err := c.send(ctx, method, path, query, in)
	if err != nil {
		return nil, err
	}

	env := &envelope{}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, &Error{Message: err.Error(), Status: http.StatusOK}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &Error{Message: err.Error(), Status: http.StatusOK}
		}
	}
	return env, nil
}

// send performs one round trip and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, in interface{}) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: transportMessage(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: transportMessage(err), Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, responseError(resp.StatusCode, body)
	}
	return body, nil
}

func responseError(status int, body []byte) *Error {
	e := &Error{
		Message: fmt.Sprintf("Request failed with status code %d", status),
		Status:  status,
	}
	env := errorEnvelope{}
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			e.Message = env.Message
		}
		e.Details = env.Details
	}
	return e
}

func transportMessage(err error) string {
	if err == nil || err.Error() == "" {
		return genericMessage
	}
	return err.Error()
}
