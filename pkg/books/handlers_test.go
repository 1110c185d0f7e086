package books

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkwell/bookstore/internal/testgen"
	"github.com/inkwell/bookstore/pkg/binder"
	"github.com/inkwell/bookstore/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Count      int                   `json:"count"`
	Data       json.RawMessage       `json:"data"`
	Pagination *Pagination           `json:"pagination"`
	Error      string                `json:"error"`
	Details    []errcodes.FieldError `json:"details"`
}

type testBook struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	Price          float64 `json:"price"`
	PublishedDate  string  `json:"publishedDate"`
	Genre          string  `json:"genre"`
	Stock          int     `json:"stock"`
	FormattedPrice string  `json:"formattedPrice"`
	Age            int     `json:"age"`
}

func setupTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	db := setupTestDB(t)
	v := newTestValidator()

	e := echo.New()
	b, err := binder.New(v)
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler(true).Handle

	RegisterRoutesWithGroup(e.Group("/api/books"), db, v)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, method, target string, body []byte) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	env := testEnvelope{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func createViaAPI(t *testing.T, e *echo.Echo, o testgen.BookOptions) testBook {
	t.Helper()
	rr, env := doRequest(t, e, http.MethodPost, "/api/books", o.JSON(t))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	book := testBook{}
	require.NoError(t, json.Unmarshal(env.Data, &book))
	return book
}

func TestHandlers_CreateAndRetrieve(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	created := createViaAPI(t, e, testgen.BookOptions{
		Title:         "the hobbit",
		Author:        "j tolkien",
		Price:         15,
		PublishedDate: "1937-09-21",
		Genre:         "Fiction",
	})
	assert.Equal(t, "The hobbit", created.Title)
	assert.Equal(t, "J tolkien", created.Author)
	assert.Equal(t, "$15.00", created.FormattedPrice)
	assert.Equal(t, "Fiction", created.Genre)
	assert.Positive(t, created.Age)

	rr, env := doRequest(t, e, http.MethodGet, "/api/books/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	got := testBook{}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.InDelta(t, 15.0, got.Price, 0.0001)
}

func TestHandlers_CreateMessage(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	rr, env := doRequest(t, e, http.MethodPost, "/api/books", testgen.Book(0).JSON(t))
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Book created successfully", env.Message)
}

func TestHandlers_CreateFutureDate(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	o := testgen.Book(0)
	o.PublishedDate = fixedNow.AddDate(0, 0, 1).Format("2006-01-02")
	rr, env := doRequest(t, e, http.MethodPost, "/api/books", o.JSON(t))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation Error", env.Error)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "publishedDate", env.Details[0].Field)
	assert.Contains(t, rr.Body.String(), "publishedDate")
}

func TestHandlers_CreateValidation(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	rr, env := doRequest(t, e, http.MethodPost, "/api/books", []byte(`{"title":"","price":-1,"genre":"Poetry"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation Error", env.Error)

	fields := []string{}
	for _, d := range env.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"title", "author", "price", "publishedDate", "genre"}, fields)
}

func TestHandlers_CreateDuplicateISBN(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	createViaAPI(t, e, testgen.Book(0))
	o := testgen.Book(1)
	o.ISBN = testgen.Book(0).ISBN
	rr, env := doRequest(t, e, http.MethodPost, "/api/books", o.JSON(t))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Duplicate Error", env.Error)
}

func TestHandlers_List(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	for _, o := range testgen.Books(30) {
		createViaAPI(t, e, o)
	}

	rr, env := doRequest(t, e, http.MethodGet, "/api/books?genre=Mystery&sort=price&order=asc&page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	books := []testBook{}
	require.NoError(t, json.Unmarshal(env.Data, &books))
	assert.LessOrEqual(t, len(books), 5)
	assert.NotEmpty(t, books)
	assert.Equal(t, len(books), env.Count)
	for i, b := range books {
		assert.Equal(t, "Mystery", b.Genre)
		if i > 0 {
			assert.LessOrEqual(t, books[i-1].Price, b.Price)
		}
	}

	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.CurrentPage)
	assert.False(t, env.Pagination.HasPrevPage)
}

func TestHandlers_ListDefaults(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	for _, o := range testgen.Books(12) {
		createViaAPI(t, e, o)
	}

	rr, env := doRequest(t, e, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, env.Count)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 2, TotalBooks: 12, HasNextPage: true}, *env.Pagination)
}

func TestHandlers_ListRejectsBadParams(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"page zero", "page=0", "page"},
		{"page past the last offset", "page=922337203685477581&limit=10", "page"},
		{"limit too high", "limit=101", "limit"},
		{"bad sort", "sort=isbn", "sort"},
		{"bad order", "order=up", "order"},
		{"bad genre", "genre=Poetry", "genre"},
		{"negative price", "minPrice=-1", "minPrice"},
		{"non-numeric page", "page=abc", "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := doRequest(t, e, http.MethodGet, "/api/books?"+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			require.NotEmpty(t, env.Details)
			assert.Equal(t, tt.field, env.Details[0].Field)
		})
	}
}

func TestHandlers_ListLastAllowedPage(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	for _, o := range testgen.Books(3) {
		createViaAPI(t, e, o)
	}

	rr, env := doRequest(t, e, http.MethodGet, fmt.Sprintf("/api/books?page=%d&limit=%d", MaxPage, MaxLimit), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	list := []testBook{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, MaxPage, env.Pagination.CurrentPage)
	assert.Equal(t, 1, env.Pagination.TotalPages)
	assert.False(t, env.Pagination.HasNextPage)
}

func TestHandlers_Update(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	created := createViaAPI(t, e, testgen.Book(0))

	rr, env := doRequest(t, e, http.MethodPut, "/api/books/"+created.ID, []byte(`{"title":"a NEW title","stock":3}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Book updated successfully", env.Message)

	updated := testBook{}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "A new title", updated.Title)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, created.Author, updated.Author)

	rr, env = doRequest(t, e, http.MethodPut, "/api/books/"+created.ID, []byte(`{"price":20000}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	require.Len(t, env.Details, 1)
	assert.Equal(t, "price", env.Details[0].Field)
}

func TestHandlers_Delete(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	created := createViaAPI(t, e, testgen.Book(0))

	rr, env := doRequest(t, e, http.MethodDelete, "/api/books/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Book deleted successfully", env.Message)
	deleted := DeletedBook{}
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, created.ID, deleted.ID)

	rr, env = doRequest(t, e, http.MethodDelete, "/api/books/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Book not found", env.Error)
}

func TestHandlers_InvalidID(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rr, env := doRequest(t, e, method, "/api/books/not-an-id", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, method)
		assert.Equal(t, "Invalid ID format", env.Error, method)
	}
}

func TestHandlers_Stats(t *testing.T) {
	t.Parallel()
	e := setupTestServer(t)

	for _, o := range testgen.Books(9) {
		createViaAPI(t, e, o)
	}

	rr, env := doRequest(t, e, http.MethodGet, "/api/books/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	stats := struct {
		Overview struct {
			TotalBooks int `json:"totalBooks"`
		} `json:"overview"`
		ByGenre []struct {
			Genre string `json:"genre"`
			Count int    `json:"count"`
		} `json:"byGenre"`
		ByYear []struct {
			Year  int `json:"year"`
			Count int `json:"count"`
		} `json:"byYear"`
	}{}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 9, stats.Overview.TotalBooks)
	assert.Len(t, stats.ByGenre, 9)
	assert.NotEmpty(t, stats.ByYear)
}
