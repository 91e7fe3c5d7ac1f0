package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsivadasan/bookscout/internal/config"
	"github.com/vsivadasan/bookscout/internal/index"
	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/internal/scanner"
	"github.com/vsivadasan/bookscout/internal/searcher"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, filenames ...string) (*gin.Engine, string) {
	return newTestServerThreshold(t, searcher.DefaultThreshold, filenames...)
}

func newTestServerThreshold(t *testing.T, threshold int, filenames ...string) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range filenames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content"), 0644))
	}

	set := roots.New()
	require.NoError(t, set.Add(dir))

	cfg := &config.Config{
		ScanTimeout:      30 * time.Second,
		DefaultThreshold: threshold,
		ResultLimit:      100,
		MaxAttachmentMB:  50,
	}
	cache := index.New(set, scanner.New(nil))
	srv := New(cfg, set, cache, searcher.New(cache), nil, nil)
	return srv.BuildRouter(), dir
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, router *gin.Engine, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	body := getJSON(t, router, "/healthz")
	assert.Equal(t, "ok", body["status"])
}

func TestSearchEndpoint(t *testing.T) {
	router, dir := newTestServer(t,
		"The_Hobbit-Tolkien.epub",
		"Hobbit_Annotated.pdf",
		"War_and_Peace.epub",
	)

	w := postForm(router, "/search", url.Values{
		"query":                {"hobbit tolkien"},
		"similarity_threshold": {"50"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])

	results := body["results"].([]any)
	require.Len(t, results, 2)
	top := results[0].(map[string]any)
	assert.Equal(t, "The_Hobbit-Tolkien.epub", top["filename"])
	assert.Equal(t, dir, top["directory"])
	assert.Equal(t, ".epub", top["extension"])

	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["total_books"])
	assert.Equal(t, float64(2), stats["results_count"])
}

func TestSearchZeroDefaultThresholdMatchesEverything(t *testing.T) {
	// A configured threshold of zero is a real value, not "unset": with no
	// form override every scanned file comes back.
	router, _ := newTestServerThreshold(t, 0,
		"The_Hobbit-Tolkien.epub",
		"War_and_Peace.epub",
	)

	w := postForm(router, "/search", url.Values{"query": {"hobbit"}})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Len(t, body["results"], 2)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	router, _ := newTestServer(t, "book.epub")

	w := postForm(router, "/search", url.Values{"query": {"   "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
}

func TestSearchBadThresholdRejected(t *testing.T) {
	router, _ := newTestServer(t, "book.epub")

	for _, raw := range []string{"abc", "-5", "101"} {
		w := postForm(router, "/search", url.Values{
			"query":                {"book"},
			"similarity_threshold": {raw},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "threshold %q", raw)
	}
}

func TestDirectoriesListAndMutate(t *testing.T) {
	router, dir := newTestServer(t, "book.epub")

	body := getJSON(t, router, "/directories")
	assert.Equal(t, float64(1), body["total"])
	assert.Contains(t, body["valid"], dir)

	other := t.TempDir()
	w := postForm(router, "/directories/add", url.Values{"directory": {other}})
	require.Equal(t, http.StatusOK, w.Code)
	added := decode(t, w)
	assert.Len(t, added["directories"], 2)

	w = postForm(router, "/directories/remove", url.Values{"directory": {other}})
	require.Equal(t, http.StatusOK, w.Code)
	removed := decode(t, w)
	assert.Len(t, removed["directories"], 1)
}

func TestDirectoriesAddEmptyRejected(t *testing.T) {
	router, _ := newTestServer(t)
	w := postForm(router, "/directories/add", url.Values{"directory": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDirectoriesClear(t *testing.T) {
	router, _ := newTestServer(t, "book.epub")

	w := postForm(router, "/directories/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["directories"])

	body := getJSON(t, router, "/directories")
	assert.Equal(t, float64(0), body["total"])
}

func TestStatsEndpoint(t *testing.T) {
	router, _ := newTestServer(t, "a.epub", "b.epub", "c.pdf")

	body := getJSON(t, router, "/stats")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["total_files"])

	byFormat := body["by_format"].(map[string]any)
	assert.Equal(t, float64(2), byFormat["epub"])
	assert.Equal(t, float64(1), byFormat["pdf"])
}

func TestKindleSendRequiresPath(t *testing.T) {
	router, _ := newTestServer(t)
	w := postForm(router, "/kindle/send", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKindleInfo(t *testing.T) {
	router, _ := newTestServer(t)
	body := getJSON(t, router, "/kindle/info")
	assert.Equal(t, false, body["fully_configured"])
	assert.Contains(t, body, "calibre_available")
}
