package render

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"pages/layout.html": {Data: []byte(`{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`)},
	"pages/hello.html":  {Data: []byte(`{{define "content"}}Hello, {{.}}!{{end}}`)},
	"pages/bye.html":    {Data: []byte(`{{define "content"}}Bye{{end}}`)},
}

func TestRenderer_Page(t *testing.T) {
	rr, err := New(testFS, "pages")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		err := rr.Page(w, r, http.StatusTeapot, "hello.html", "<world>")

		assert.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "<main>Hello, &lt;world&gt;!</main>", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	})

	t.Run("pages do not share content", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		err := rr.Page(w, r, http.StatusOK, "bye.html", nil)

		assert.NoError(t, err)
		assert.Equal(t, "<main>Bye</main>", w.Body.String())
	})

	t.Run("unknown page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		err := rr.Page(w, r, http.StatusOK, "missing.html", nil)

		assert.Error(t, err)
		assert.Zero(t, w.Body.Len())
	})

	t.Run("execution error writes nothing", func(t *testing.T) {
		broken := fstest.MapFS{
			"p/layout.html": {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
			"p/bad.html":    {Data: []byte(`{{define "content"}}{{.Missing}}{{end}}`)},
		}

		rr, err := New(broken, "p")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		err = rr.Page(w, r, http.StatusOK, "bad.html", struct{}{})

		assert.Error(t, err)
		assert.Zero(t, w.Body.Len())
	})
}

func TestNew_ParseError(t *testing.T) {
	_, err := New(fstest.MapFS{
		"p/layout.html": {Data: []byte(`{{define "layout"}}{{end}}`)},
		"p/bad.html":    {Data: []byte(`{{define "content"}}{{end`)},
	}, "p")

	assert.Error(t, err)
}
