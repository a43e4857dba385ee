package httpserver

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// newViews builds the template engine over the embedded templates.
func newViews(reload bool) *html.Engine {
	root, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(root), ".html")
	engine.Reload(reload)

	return engine
}
