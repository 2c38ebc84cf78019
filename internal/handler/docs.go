package handler

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

type DocsHandler struct {
	yamlSpec []byte
	jsonSpec []byte
}

// NewDocsHandler parses the embedded OpenAPI document once. A malformed
// document fails startup.
func NewDocsHandler() (*DocsHandler, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return nil, fmt.Errorf("NewDocsHandler: parse openapi.yaml: %w", err)
	}
	if _, ok := doc["paths"]; !ok {
		return nil, fmt.Errorf("NewDocsHandler: openapi.yaml has no paths")
	}

	jsonSpec, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("NewDocsHandler: encode json: %w", err)
	}

	return &DocsHandler{yamlSpec: openAPISpec, jsonSpec: jsonSpec}, nil
}

func (h *DocsHandler) SpecYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(h.yamlSpec)
}

func (h *DocsHandler) SpecJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(h.jsonSpec)
}

func (h *DocsHandler) UI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(swaggerHTML))
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Ledger API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/docs/openapi.json",
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout"
    });
  </script>
</body>
</html>`
