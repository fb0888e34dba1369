package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/storefront/admin/internal/controller"
	"github.com/Alturino/storefront/internal/app"
)

// AttachRoutes mounts the admin views of the local view server on router.
func AttachRoutes(router *mux.Router, a *app.App) {
	controller.AttachAdminController(router, a.Admin)
}
