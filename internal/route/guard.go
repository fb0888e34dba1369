// Package route decides whether a navigation route may be shown to the
// current session.
package route

import (
	"strings"
)

const (
	Home         = "/"
	Login        = "/login"
	Logout       = "/logout"
	Register     = "/register"
	Products     = "/products"
	Cart         = "/cart"
	Checkout     = "/checkout"
	OrderSuccess = "/order-success"
	Orders       = "/orders"
	Admin        = "/admin"
)

type Requirement struct {
	RequireAuth  bool
	RequireAdmin bool
}

var (
	Public        = Requirement{}
	Authenticated = Requirement{RequireAuth: true}
	AdminOnly     = Requirement{RequireAuth: true, RequireAdmin: true}
)

// Decision is either Render or a Redirect target.
type Decision struct {
	Redirect string
	Render   bool
}

type Viewer interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// Decide is a pure function of the viewer's state and the route requirement.
// Anonymous viewers are sent to login, non admin viewers of admin routes are
// sent home.
func Decide(viewer Viewer, requirement Requirement) Decision {
	authenticated := viewer != nil && viewer.IsAuthenticated()
	if (requirement.RequireAuth || requirement.RequireAdmin) && !authenticated {
		return Decision{Redirect: Login}
	}
	if requirement.RequireAdmin && !viewer.IsAdmin() {
		return Decision{Redirect: Home}
	}
	return Decision{Render: true}
}

// Routes lists the navigation routes and what each requires. Nested paths
// inherit the requirement of their longest listed prefix.
var Routes = map[string]Requirement{
	Home:         Public,
	Login:        Public,
	Logout:       Public,
	Register:     Public,
	Products:     Public,
	Cart:         Authenticated,
	Checkout:     Authenticated,
	OrderSuccess: Authenticated,
	Orders:       Authenticated,
	Admin:        AdminOnly,
}

func RequirementFor(path string) Requirement {
	path = "/" + strings.Trim(path, "/")
	for {
		if requirement, ok := Routes[path]; ok {
			return requirement
		}
		i := strings.LastIndex(path, "/")
		if i <= 0 {
			return Routes[Home]
		}
		path = path[:i]
	}
}
