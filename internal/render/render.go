package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/lukman83/phonescope/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Every value reaches the markup through html/template, which escapes it for the
// context it lands in and replaces unsafe URLs with "#ZgotmplZ".
var templates = template.Must(template.New("results").Funcs(template.FuncMap{
	"upper":   strings.ToUpper,
	"summary": Summary,
}).ParseFS(templateFS, "templates/*.html"))

// Render produces the result markup for resp in the given mode.
func Render(resp *models.SearchResponse, mode models.Mode) (template.HTML, error) {
	if resp == nil {
		return "", fmt.Errorf("render: nil response")
	}

	var (
		name string
		data any
	)
	switch mode {
	case models.ModeDetailed:
		name, data = "detailed", NewDetailedView(resp)
	case models.ModeBasic, "":
		name, data = "basic", NewBasicView(resp)
	default:
		return "", fmt.Errorf("render: unknown mode %q", mode)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}
