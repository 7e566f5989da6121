package project

import (
	"bytes"
	"html/template"

	"github.com/pkg/errors"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; background: #111; }
  body { display: flex; align-items: center; justify-content: center; }
  canvas { background: {{.Background}}; }
</style>
</head>
<body>
<canvas id="{{.CanvasID}}" width="{{.Width}}" height="{{.Height}}"></canvas>
<script src="{{.Script}}"></script>
</body>
</html>
`))

// Page describes the HTML shell that hosts a compiled program.
type Page struct {
	Title      string
	CanvasID   string
	Width      int
	Height     int
	Background template.CSS
	Script     string
}

// PageFor builds the page for cfg loading the given script file.
func PageFor(cfg Config, title, script string) Page {
	id := cfg.Canvas.ID
	if id == "" {
		id = DefaultConfig().Canvas.ID
	}
	return Page{
		Title:      title,
		CanvasID:   id,
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		Background: template.CSS(cfg.Canvas.Background),
		Script:     script,
	}
}

func (p Page) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return nil, errors.Wrap(err, "rendering page")
	}
	return buf.Bytes(), nil
}
