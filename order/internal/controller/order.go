package controller

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/service"
)

var tracer = otel.Tracer(constants.AppShopServer)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(mux *mux.Router, service *service.OrderService) {
	controller := OrderController{service: service}

	mux.HandleFunc(route.Checkout, controller.Checkout).Methods(http.MethodPost)
	mux.HandleFunc(route.OrderSuccess, controller.OrderSuccess).Methods(http.MethodGet)

	router := mux.PathPrefix(route.Orders).Subrouter()
	router.HandleFunc("", controller.FindOrderHistory).Methods(http.MethodGet)
	router.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func parseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid orderId=%s", inErrors.ErrBadRequest, raw)
	}
	return id, nil
}

// Checkout places the cart and points the caller to the success view.
func (ctrl OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Str(log.KeyProcess, "checking out").
		Logger()

	order, err := ctrl.service.Checkout(logger.WithContext(c))
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Info().Int64(log.KeyOrderID, order.ID).Msg("checked out")

	inHttp.WriteJsonResponse(c, w, inHttp.Response{
		StatusCode: http.StatusCreated,
		Message:    "order placed",
		Redirect:   fmt.Sprintf("%s?orderId=%d", route.OrderSuccess, order.ID),
		Data:       order,
	})
}

func (ctrl OrderController) OrderSuccess(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "OrderController OrderSuccess")
	defer span.End()

	raw := r.URL.Query().Get("orderId")
	if raw == "" {
		inHttp.WriteSuccess(c, w, http.StatusOK, "order placed successfully", nil)
		return
	}
	ctrl.findOrder(c, w, span, raw, "order placed successfully")
}

func (ctrl OrderController) FindOrderHistory(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "OrderController FindOrderHistory")
	defer span.End()

	orders, err := ctrl.service.FindOrderHistory(c)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusOK, "found orders", orders)
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	ctrl.findOrder(c, w, span, mux.Vars(r)["orderId"], "found order")
}

func (ctrl OrderController) findOrder(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	rawID string,
	message string,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController findOrder").
		Str(log.KeyProcess, "parsing orderId").
		Logger()

	id, err := parseOrderID(rawID)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Int64(log.KeyOrderID, id).Str(log.KeyProcess, "finding order").Logger()
	order, err := ctrl.service.FindOrderByID(logger.WithContext(c), request.FindOrderById{OrderID: id})
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusOK, message, order)
}
