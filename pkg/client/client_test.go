package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwell/bookstore/internal/testgen"
	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/config"
	"github.com/inkwell/bookstore/pkg/database"
	"github.com/inkwell/bookstore/pkg/migrations"
	"github.com/inkwell/bookstore/pkg/models"
	"github.com/inkwell/bookstore/pkg/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := config.NewForTest()
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	e, err := server.NewEcho(cfg, db)
	require.NoError(t, err)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)

	return New(ts.URL + "/")
}

func fieldsFor(t *testing.T, o testgen.BookOptions) books.Fields {
	t.Helper()
	payload := books.CreateBookPayload{}
	o.Decode(t, &payload)
	return books.Fields(payload)
}

func TestClient_CRUD(t *testing.T) {
	ctx := context.Background()
	c := setupTestClient(t)

	created, err := c.CreateBook(ctx, fieldsFor(t, testgen.BookOptions{
		Title:         "the hobbit",
		Author:        "j tolkien",
		Price:         15,
		PublishedDate: "1937-09-21",
		Genre:         models.GenreFiction,
	}))
	require.NoError(t, err)
	assert.Equal(t, "The hobbit", created.Title)
	assert.Equal(t, "$15.00", created.FormattedPrice())

	got, err := c.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1937, got.PublishedDate.Year())

	price := decimal.NewFromFloat(22.5)
	updated, err := c.UpdateBook(ctx, created.ID, books.Fields{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, "The hobbit", updated.Title)

	id, err := c.DeleteBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = c.GetBook(ctx, created.ID)
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusNotFound, clientErr.Status)
	assert.Equal(t, "No book found with the provided ID", clientErr.Message)
}

func TestClient_ListAndStats(t *testing.T) {
	ctx := context.Background()
	c := setupTestClient(t)

	for _, o := range testgen.Books(15) {
		_, err := c.CreateBook(ctx, fieldsFor(t, o))
		require.NoError(t, err)
	}

	list, err := c.ListBooks(ctx, ListParams{Page: 2, Limit: 10, Sort: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Len(t, list.Books, 5)
	assert.Equal(t, 5, list.Count)
	assert.Equal(t, books.Pagination{CurrentPage: 2, TotalPages: 2, TotalBooks: 15, HasPrevPage: true}, list.Pagination)

	minPrice := 50.0
	list, err = c.ListBooks(ctx, ListParams{MinPrice: &minPrice, Limit: 100})
	require.NoError(t, err)
	for _, b := range list.Books {
		assert.True(t, b.Price.GreaterThanOrEqual(decimal.NewFromFloat(minPrice)))
	}

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, stats.Overview.TotalBooks)
	assert.True(t, stats.Overview.AveragePrice.Valid)
}

func TestClient_ValidationError(t *testing.T) {
	ctx := context.Background()
	c := setupTestClient(t)

	_, err := c.CreateBook(ctx, books.Fields{})
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusBadRequest, clientErr.Status)
	assert.Equal(t, "Validation failed with 4 errors", clientErr.Message)
	assert.Len(t, clientErr.Details, 4)

	_, err = c.ListBooks(ctx, ListParams{Sort: "isbn"})
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusBadRequest, clientErr.Status)
}

func TestClient_Health(t *testing.T) {
	c := setupTestClient(t)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, config.EnvironmentTest, health.Environment)
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := New(url).Stats(context.Background())
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 0, clientErr.Status)
	assert.NotEmpty(t, clientErr.Message)
}

func TestClient_NonEnvelopeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL).GetBook(context.Background(), "x")
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusBadGateway, clientErr.Status)
	assert.Equal(t, "Request failed with status code 502", clientErr.Message)
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL, WithTimeout(20*time.Millisecond)).Stats(context.Background())
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, 0, clientErr.Status)
}

func TestListParamsValues(t *testing.T) {
	maxPrice := 12.5
	v := ListParams{Page: 2, Genre: "Science Fiction", MaxPrice: &maxPrice}.values()
	assert.Equal(t, "genre=Science+Fiction&maxPrice=12.5&page=2", v.Encode())
	assert.Empty(t, ListParams{}.values())
}
