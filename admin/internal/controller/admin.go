package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/admin/service"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/product/pkg/request"
)

var tracer = otel.Tracer(constants.AppShopServer)

type AdminController struct {
	service *service.AdminService
}

func AttachAdminController(mux *mux.Router, service *service.AdminService) {
	controller := AdminController{service: service}

	router := mux.PathPrefix(route.Admin).Subrouter()
	router.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("/products", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("/products", controller.InsertProduct).Methods(http.MethodPost)
	router.HandleFunc("/products/{productId}", controller.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/products/{productId}", controller.RemoveProduct).Methods(http.MethodDelete)
	router.HandleFunc("/users", controller.SearchUsers).Methods(http.MethodGet)
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", inErrors.ErrInvalidProductID, raw)
	}
	return id, nil
}

func decodeProduct(r *http.Request) (request.Product, error) {
	reqBody := request.Product{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		return request.Product{}, fmt.Errorf(
			"%w: failed decoding request body with error=%s",
			inErrors.ErrBadRequest,
			err.Error(),
		)
	}
	return reqBody, nil
}

func (ctrl AdminController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "AdminController FindProducts")
	defer span.End()

	products, err := ctrl.service.FindProducts(c)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusOK, "found products", products)
}

func (ctrl AdminController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "AdminController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController InsertProduct").
		Str(log.KeyProcess, "decoding request body").
		Logger()

	reqBody, err := decodeProduct(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	product, err := ctrl.service.InsertProduct(logger.WithContext(c), reqBody)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusCreated, "inserted product", product)
}

func (ctrl AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "AdminController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController UpdateProduct").
		Str(log.KeyProcess, "parsing request").
		Logger()

	id, err := parseProductID(mux.Vars(r)["productId"])
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}
	reqBody, err := decodeProduct(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	product, err := ctrl.service.UpdateProduct(logger.WithContext(c), id, reqBody)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusOK, "updated product", product)
}

func (ctrl AdminController) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "AdminController RemoveProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController RemoveProduct").
		Str(log.KeyProcess, "parsing productId").
		Logger()

	id, err := parseProductID(mux.Vars(r)["productId"])
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	if err := ctrl.service.RemoveProduct(logger.WithContext(c), id); err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusOK, fmt.Sprintf("removed product id=%d", id), nil)
}

func (ctrl AdminController) SearchUsers(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "AdminController SearchUsers")
	defer span.End()

	users, err := ctrl.service.SearchUsers(c, r.URL.Query().Get("search"))
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	inHttp.WriteSuccess(c, w, http.StatusOK, "found users", users)
}
