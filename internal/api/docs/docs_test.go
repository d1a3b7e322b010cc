package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocsRouter(t *testing.T) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	require.NoError(t, Register(r))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServeYAML(t *testing.T) {
	rec := get(newDocsRouter(t), "/openapi.yaml")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, OpenAPI, rec.Body.Bytes())
}

func TestServeJSONDescribesEveryEndpoint(t *testing.T) {
	rec := get(newDocsRouter(t), "/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	tests := []struct {
		path   string
		method string
	}{
		{"/api/healthcheck", "get"},
		{"/api/feeds", "get"},
		{"/api/feeds/{feed_id}", "get"},
		{"/api/admin/refresh-agency-names", "post"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Contains(t, doc.Paths, tt.path)
			assert.Contains(t, doc.Paths[tt.path], tt.method)
		})
	}
}

func TestServeRedoc(t *testing.T) {
	rec := get(newDocsRouter(t), "/docs")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redoc-container")
	assert.Contains(t, rec.Body.String(), "/openapi.yaml")
}

func TestToJSONRejectsInvalidYAML(t *testing.T) {
	_, err := ToJSON([]byte("paths: [unclosed"))
	assert.Error(t, err)
}
