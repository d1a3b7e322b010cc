// Package docs serves the OpenAPI description of the rater API.
package docs

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// Register attaches the API documentation routes to r.
// Routes:
//
//	GET /openapi.yaml -> embedded OpenAPI document
//	GET /openapi.json -> same document as JSON
//	GET /docs         -> ReDoc HTML
func Register(r *mux.Router) error {
	asJSON, err := ToJSON(OpenAPI)
	if err != nil {
		return fmt.Errorf("convert openapi document: %w", err)
	}

	r.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	}).Methods("GET")

	r.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(asJSON)
	}).Methods("GET")

	r.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	}).Methods("GET")

	return nil
}

// ToJSON re-encodes a YAML document as JSON
func ToJSON(doc []byte) ([]byte, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(doc, &tree); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return json.Marshal(tree)
}

// Minimal HTML that loads ReDoc and points it at /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>GTFS-RT Rater API - ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
