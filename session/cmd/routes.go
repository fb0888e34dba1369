package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/storefront/session/internal/controller"
	"github.com/Alturino/storefront/internal/app"
)

// AttachRoutes mounts the session views of the local view server on router.
func AttachRoutes(router *mux.Router, a *app.App) {
	controller.AttachSessionController(router, a.Session, a.Cart, a.Products)
}
