package handlers

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"sort"
	"strings"
)

//go:embed openapi.json
var openAPISpec []byte

const specPath = "/v1/openapi.json"

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}} {{.Version}}</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; padding: 0; }
      redoc { display: block; height: 100vh; }
      noscript { display: block; font-family: sans-serif; padding: 1rem 2rem; }
    </style>
  </head>
  <body>
    <noscript>
      <h1>{{.Title}} {{.Version}}</h1>
      <p>{{.Description}}</p>
      <p>Machine readable description: <a href="{{.SpecURL}}">{{.SpecURL}}</a></p>
      <ul>
        {{range .Operations}}<li><code>{{.}}</code></li>
        {{end}}
      </ul>
    </noscript>
    <redoc spec-url="{{.SpecURL}}"></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
  </body>
</html>`))

type docsPage struct {
	Title       string
	Version     string
	Description string
	SpecURL     string
	Operations  []string
}

// docsHTML is rendered once from the embedded document so the page always
// names the routes that are actually described.
var docsHTML = mustRenderDocs(openAPISpec)

func mustRenderDocs(spec []byte) []byte {
	page, err := docsPageFrom(spec)
	if err != nil {
		panic("handlers: invalid openapi.json: " + err.Error())
	}
	var buf bytes.Buffer
	if err := docsTemplate.Execute(&buf, page); err != nil {
		panic("handlers: render docs: " + err.Error())
	}
	return buf.Bytes()
}

func docsPageFrom(spec []byte) (docsPage, error) {
	var doc struct {
		Info struct {
			Title       string `json:"title"`
			Version     string `json:"version"`
			Description string `json:"description"`
		} `json:"info"`
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(spec, &doc); err != nil {
		return docsPage{}, err
	}
	page := docsPage{
		Title:       doc.Info.Title,
		Version:     doc.Info.Version,
		Description: doc.Info.Description,
		SpecURL:     specPath,
	}
	for path, methods := range doc.Paths {
		for method := range methods {
			switch method {
			case "get", "post", "put", "patch", "delete":
				page.Operations = append(page.Operations, strings.ToUpper(method)+" "+path)
			}
		}
	}
	sort.Strings(page.Operations)
	return page, nil
}

func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(docsHTML)
}
