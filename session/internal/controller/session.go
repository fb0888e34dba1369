package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	cartService "github.com/Alturino/storefront/cart/service"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/route"
	productRes "github.com/Alturino/storefront/product/pkg/response"
	productService "github.com/Alturino/storefront/product/service"
	"github.com/Alturino/storefront/session/pkg/request"
	"github.com/Alturino/storefront/session/pkg/response"
	"github.com/Alturino/storefront/session/service"
)

var tracer = otel.Tracer(constants.AppShopServer)

type SessionController struct {
	session  *service.SessionService
	cart     *cartService.CartService
	products *productService.ProductService
}

// Home is the landing view: who is logged in, how many items the cart holds
// and the catalogue.
type Home struct {
	User          *response.User       `json:"user,omitempty"`
	Products      []productRes.Product `json:"products"`
	CartItemCount int                  `json:"cartItemCount"`
	Authenticated bool                 `json:"authenticated"`
	Admin         bool                 `json:"admin"`
}

func AttachSessionController(
	mux *mux.Router,
	session *service.SessionService,
	cart *cartService.CartService,
	products *productService.ProductService,
) {
	controller := SessionController{session: session, cart: cart, products: products}

	mux.HandleFunc(route.Home, controller.Home).Methods(http.MethodGet)
	mux.HandleFunc(route.Login, controller.Login).Methods(http.MethodPost)
	mux.HandleFunc(route.Logout, controller.Logout).Methods(http.MethodPost)
	mux.HandleFunc(route.Register, controller.Register).Methods(http.MethodPost)
}

func (ctrl SessionController) Home(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "SessionController Home")
	defer span.End()

	home := Home{
		Authenticated: ctrl.session.IsAuthenticated(),
		Admin:         ctrl.session.IsAdmin(),
		CartItemCount: ctrl.cart.ItemCount(),
	}
	if user, ok := ctrl.session.User(); ok {
		home.User = &user
	}

	products, err := ctrl.products.FindProducts(c)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	home.Products = products

	inHttp.WriteSuccess(c, w, http.StatusOK, "welcome", home)
}

func (ctrl SessionController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "SessionController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionController Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.Login{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("%w: failed decoding request body with error=%s", inErrors.ErrBadRequest, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Str(log.KeyProcess, "logging in").Logger()
	user, err := ctrl.session.Login(logger.WithContext(c), reqBody)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("logged in")

	inHttp.WriteJsonResponse(c, w, inHttp.Response{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("welcome %s", user.Name),
		Redirect:   route.Home,
		Data:       user,
	})
}

func (ctrl SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "SessionController Logout")
	defer span.End()

	ctrl.session.Logout(c)
	inHttp.WriteJsonResponse(c, w, inHttp.Response{
		StatusCode: http.StatusOK,
		Message:    "logged out",
		Redirect:   route.Home,
	})
}

func (ctrl SessionController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "SessionController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SessionController Register").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.Register{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("%w: failed decoding request body with error=%s", inErrors.ErrBadRequest, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Str(log.KeyProcess, "registering").Logger()
	message, err := ctrl.session.Register(logger.WithContext(c), reqBody)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Msg("registered")

	inHttp.WriteJsonResponse(c, w, inHttp.Response{
		StatusCode: http.StatusCreated,
		Message:    message,
		Redirect:   route.Login,
	})
}
