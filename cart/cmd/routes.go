package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/internal/app"
)

// AttachRoutes mounts the cart views of the local view server on router.
func AttachRoutes(router *mux.Router, a *app.App) {
	controller.AttachCartController(router, a.Cart, a.Products)
}
