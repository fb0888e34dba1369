package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/service"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/internal/validate"
	productService "github.com/Alturino/storefront/product/service"
)

var tracer = otel.Tracer(constants.AppShopServer)

type CartController struct {
	cart     *service.CartService
	products *productService.ProductService
}

func AttachCartController(
	mux *mux.Router,
	cart *service.CartService,
	products *productService.ProductService,
) {
	controller := CartController{cart: cart, products: products}

	router := mux.PathPrefix(route.Cart).Subrouter()
	router.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{productId:[0-9]+}", controller.UpdateQuantity).Methods(http.MethodPut)
	router.HandleFunc("/items/{productId:[0-9]+}", controller.RemoveItem).Methods(http.MethodDelete)
}

func productID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["productId"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", inErrors.ErrInvalidProductID, mux.Vars(r)["productId"])
	}
	return id, nil
}

func (ctrl CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	inHttp.WriteSuccess(c, w, http.StatusOK, "found cart", ctrl.cart.Snapshot())
}

func (ctrl CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.AddItem{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("%w: failed decoding request body with error=%s", inErrors.ErrBadRequest, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().
		Int64(log.KeyProductID, reqBody.ProductID).
		Int(log.KeyQuantity, reqBody.Quantity).
		Str(log.KeyProcess, "validating request body").
		Logger()
	if err := validate.Get().StructCtx(c, reqBody); err != nil {
		if reqBody.Quantity < 1 {
			err = inErrors.ErrInvalidQuantity
		} else {
			err = fmt.Errorf("%w: %s", inErrors.ErrBadRequest, err.Error())
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	c = logger.WithContext(c)
	product, err := ctrl.products.FindProductByID(c, reqBody.ProductID)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	if !product.InStock() {
		err = fmt.Errorf("%w: %s", inErrors.ErrOutOfStock, product.Name)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	if err := ctrl.cart.AddItem(logger.WithContext(c), product, reqBody.Quantity); err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Debug().Msg("added item")

	inHttp.WriteSuccess(c, w, http.StatusCreated, fmt.Sprintf("added %s to cart", product.Name), ctrl.cart.Snapshot())
}

func (ctrl CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "CartController UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateQuantity").
		Logger()

	id, err := productID(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().
		Int64(log.KeyProductID, id).
		Str(log.KeyProcess, "decoding request body").
		Logger()
	reqBody := request.UpdateQuantity{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("%w: failed decoding request body with error=%s", inErrors.ErrBadRequest, err.Error())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Int(log.KeyQuantity, reqBody.Quantity).Logger()
	ctrl.cart.UpdateQuantity(logger.WithContext(c), id, reqBody.Quantity)
	logger.Debug().Msg("updated quantity")

	inHttp.WriteSuccess(c, w, http.StatusOK, "updated cart", ctrl.cart.Snapshot())
}

func (ctrl CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	id, err := productID(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	ctrl.cart.RemoveItem(logger.WithContext(c), id)
	inHttp.WriteSuccess(c, w, http.StatusOK, "removed item", ctrl.cart.Snapshot())
}

func (ctrl CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	ctrl.cart.Clear(c)
	inHttp.WriteSuccess(c, w, http.StatusOK, "cleared cart", ctrl.cart.Snapshot())
}
