package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inkwell/bookstore/internal/testgen"
	"github.com/inkwell/bookstore/pkg/books"
	"github.com/inkwell/bookstore/pkg/client"
	"github.com/inkwell/bookstore/pkg/config"
	"github.com/inkwell/bookstore/pkg/database"
	"github.com/inkwell/bookstore/pkg/migrations"
	"github.com/inkwell/bookstore/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func setupTestAPI(t *testing.T) string {
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
	return ts.URL
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"bookctl", "--url", url}, args...))
	return out.String(), err
}

func TestBookctl_AddShowEditDelete(t *testing.T) {
	url := setupTestAPI(t)

	out, err := run(t, url, "add", "--title", "the hobbit", "--author", "j tolkien", "--price", "15", "--published", "1937-09-21", "--genre", "Fiction")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Book created successfully")
	assert.Contains(t, out, "The hobbit")
	assert.Contains(t, out, "$15.00")

	list, err := client.New(url).ListBooks(context.Background(), client.ListParams{})
	require.NoError(t, err)
	require.Len(t, list.Books, 1)
	id := list.Books[0].ID

	out, err = run(t, url, "show", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, "J tolkien")
	assert.Contains(t, out, "1937-09-21")

	out, err = run(t, url, "edit", id, "--stock", "4")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Book updated successfully")

	out, err = run(t, url, "delete", id)
	require.NoError(t, err, out)
	assert.Contains(t, out, id)

	_, err = run(t, url, "show", id)
	require.Error(t, err)
	assert.Equal(t, "No book found with the provided ID", err.Error())
}

func TestBookctl_AddValidatesLocally(t *testing.T) {
	url := setupTestAPI(t)

	_, err := run(t, url, "add", "--title", "x", "--author", "y", "--price", "abc", "--published", "1999-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")

	_, err = run(t, url, "add", "--title", "x", "--author", "y", "--price", "20000", "--published", "1999-01-01", "--isbn", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Validation failed with 2 errors")
}

func TestBookctl_ListAndStats(t *testing.T) {
	url := setupTestAPI(t)
	c := client.New(url)
	for _, o := range testgen.Books(12) {
		payload := books.CreateBookPayload{}
		o.Decode(t, &payload)
		_, err := c.CreateBook(context.Background(), books.Fields(payload))
		require.NoError(t, err)
	}

	out, err := run(t, url, "list", "--limit", "5", "--sort", "price", "--order", "asc")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Page 1 of 3 (12 books)")
	assert.Equal(t, 1+5+2, strings.Count(out, "\n"))

	out, err = run(t, url, "list", "--genre", "Poetry")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genre")

	out, err = run(t, url, "stats")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Total books:    12")
	assert.Contains(t, out, "Books by genre")
	assert.Contains(t, out, "Books by publication year")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, strings.Repeat("█", barWidth), bar(10, 10))
	assert.Equal(t, "█", bar(1, 1000))
	assert.Equal(t, strings.Repeat("█", barWidth/2), bar(5, 10))
}

func TestRenderStatsEmpty(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, renderStats(out, &books.Stats{}))
	assert.Contains(t, out.String(), "Average price:  n/a")
	assert.Contains(t, out.String(), "Total value:    $0.00")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
