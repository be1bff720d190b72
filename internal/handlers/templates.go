package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var templateFuncs = template.FuncMap{
	"correlation": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return strconv.FormatFloat(*v, 'f', 2, 64)
	},
}

// LoadTemplates parses the HTML pages. An empty dir uses the templates built
// into the binary; otherwise every *.html file in dir is loaded instead.
func LoadTemplates(dir string) (*template.Template, error) {
	t := template.New("pages").Funcs(templateFuncs)

	var err error
	if dir == "" {
		t, err = t.ParseFS(embeddedTemplates, "templates/*.html")
	} else {
		t, err = t.ParseFS(os.DirFS(dir), "*.html")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}
