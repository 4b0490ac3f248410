package view

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html": {Data: []byte(`<title>{{.Title}}</title>{{range .Flashes}}<p class="flash">{{.}}</p>{{end}}{{template "content" .}}`)},
		"order.html":  {Data: []byte(`{{define "content"}}<td>{{money .Data}}</td>{{end}}`)},
		"hello.html":  {Data: []byte(`{{define "content"}}hi {{.Username}}{{end}}`)},
	}
}

func TestRenderUsesLayoutAndFuncs(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)
	assert.True(t, r.Has("order"))
	assert.False(t, r.Has("layout"))

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, "order", Page{Title: "Order", Flashes: []string{"<b>saved</b>"}, Data: 1500.5}))

	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "<title>Order</title>")
	assert.Contains(t, body, "<td>1500.50</td>")
	assert.Contains(t, body, "&lt;b&gt;saved&lt;/b&gt;")
}

func TestPagesDoNotLeakContentBlocks(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, r.Render(rec, "hello", Page{Username: "admin"}))
	assert.Contains(t, rec.Body.String(), "hi admin")
	assert.NotContains(t, rec.Body.String(), "<td>")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, "missing", Page{}))
	assert.Equal(t, 0, rec.Body.Len())
}
