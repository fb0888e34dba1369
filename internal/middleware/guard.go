package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/route"
)

// Guard applies the route decision for the request path. Anonymous callers
// get 401 with a redirect to login, non admin callers of admin routes get
// 403 with a redirect home.
func Guard(viewer route.Viewer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			requirement := route.RequirementFor(r.URL.Path)
			decision := route.Decide(viewer, requirement)
			if decision.Render {
				next.ServeHTTP(w, r)
				return
			}

			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "Guard").
				Str(log.KeyRoute, r.URL.Path).
				Str(log.KeyRedirect, decision.Redirect).
				Logger()

			statusCode := http.StatusForbidden
			message := "admin role required"
			if decision.Redirect == route.Login {
				statusCode = http.StatusUnauthorized
				message = "please login first"
			}
			logger.Info().Int(log.KeyResponseStatus, statusCode).Msg("route blocked")
			inHttp.WriteJsonResponse(c, w, inHttp.Response{
				StatusCode: statusCode,
				Message:    message,
				Redirect:   decision.Redirect,
			})
		})
	}
}
