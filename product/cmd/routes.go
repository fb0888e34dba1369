package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/storefront/product/internal/controller"
	"github.com/Alturino/storefront/internal/app"
)

// AttachRoutes mounts the product views of the local view server on router.
func AttachRoutes(router *mux.Router, a *app.App) {
	controller.AttachProductController(router, a.Products)
}
