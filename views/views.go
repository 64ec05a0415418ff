package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html layouts/*.html partials/*.html
var FS embed.FS

// NewEngine returns the html engine over the embedded templates
func NewEngine() *html.Engine {
	engine := html.NewFileSystem(http.FS(FS), ".html")
	return engine
}
