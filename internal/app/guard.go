package app

import (
	"fmt"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/route"
)

// Authorize applies the route guard to a command bound to the navigation
// route path. A redirect to login surfaces as ErrUnauthorized, a redirect
// home as ErrForbidden.
func (a *App) Authorize(path string) error {
	decision := route.Decide(a.Session, route.RequirementFor(path))
	switch {
	case decision.Render:
		return nil
	case decision.Redirect == route.Login:
		return fmt.Errorf("%s requires a session: %w", path, inErrors.ErrUnauthorized)
	default:
		return fmt.Errorf("%s: %w", path, inErrors.ErrForbidden)
	}
}
