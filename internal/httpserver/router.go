package httpserver

import (
	"embed"
	"html/template"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"minicart/internal/controller"
	"minicart/internal/store"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Deps carries the wired components the routes need.
type Deps struct {
	Ctrl  *controller.Controller
	Store store.Store
}

// buildRouter wires routes for the cart widget.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	h := &cartHandler{ctrl: deps.Ctrl}
	router.GET("/cart", h.page)
	router.POST("/cart/items/:itemID/quantity", h.setQuantity)
	router.POST("/cart/items/:itemID/remove", h.beginRemoval)
	router.POST("/cart/removal/cancel", h.cancelRemoval)
	router.POST("/cart/removal/confirm", h.confirmRemoval)
	router.POST("/cart/checkout", h.checkout)

	return router, nil
}
