package httpcontroller

import (
	"embed"
	"html/template"
	"sync"

	"github.com/labstack/echo/v4"
)

//go:embed views/*.html
var viewsFS embed.FS

var (
	viewTemplates     *template.Template
	viewTemplatesOnce sync.Once
)

func views() *template.Template {
	viewTemplatesOnce.Do(func() {
		viewTemplates = template.Must(template.ParseFS(viewsFS, "views/*.html"))
	})
	return viewTemplates
}

// renderView writes an embedded HTML template with the given data.
func renderView(c echo.Context, code int, name string, data any) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return views().ExecuteTemplate(c.Response().Writer, name, data)
}
