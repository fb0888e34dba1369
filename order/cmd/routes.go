package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/storefront/order/internal/controller"
	"github.com/Alturino/storefront/internal/app"
)

// AttachRoutes mounts the order views of the local view server on router.
func AttachRoutes(router *mux.Router, a *app.App) {
	controller.AttachOrderController(router, a.Orders)
}
