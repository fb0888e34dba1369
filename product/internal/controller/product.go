package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/product/service"
)

var tracer = otel.Tracer(constants.AppShopServer)

type ProductController struct {
	service *service.ProductService
}

func AttachProductController(mux *mux.Router, service *service.ProductService) {
	controller := ProductController{service}

	router := mux.PathPrefix(route.Products).Subrouter()
	router.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("/{productId}", controller.FindProductById).Methods(http.MethodGet)
}

// FindProducts lists products, filtered by the search query parameter when
// one is given.
func (p ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	search := r.URL.Query().Get("search")
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProducts").
		Str(log.KeySearchName, search).
		Logger()

	logger.Trace().Msg("finding products")
	products, err := p.service.SearchProducts(logger.WithContext(c), search)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}
	logger.Trace().Msg("found products")

	inHttp.WriteSuccess(c, w, http.StatusOK, "found products", products)
}

func (p ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing productId").Logger()
	pathValue := mux.Vars(r)["productId"]
	id, err := strconv.ParseInt(pathValue, 10, 64)
	if err != nil || id <= 0 {
		err = fmt.Errorf("%w: %s", inErrors.ErrInvalidProductID, pathValue)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteError(c, w, err)
		return
	}

	logger = logger.With().Int64(log.KeyProductID, id).Str(log.KeyProcess, "finding product").Logger()
	product, err := p.service.FindProductByID(logger.WithContext(c), id)
	if err != nil {
		inHttp.WriteError(c, w, err)
		return
	}

	inHttp.WriteSuccess(c, w, http.StatusOK, fmt.Sprintf("found product id=%d", id), product)
}
