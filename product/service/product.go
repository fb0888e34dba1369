package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/product/pkg/response"
)

var tracer = otel.Tracer(constants.AppProductService)

type ProductService struct {
	gateway *gateway.Client
}

func NewProductService(gateway *gateway.Client) *ProductService {
	return &ProductService{gateway: gateway}
}

func (s *ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyProcess, "finding products").
		Logger()

	logger.Debug().Msg("finding products")
	products := []response.Product{}
	if err := s.gateway.Get(logger.WithContext(c), gateway.PathProducts, nil, &products); err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int("count", len(products)).Msg("found products")

	return products, nil
}

func (s *ProductService) FindProductByID(c context.Context, id int64) (response.Product, error) {
	c, span := tracer.Start(c, "ProductService FindProductByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductByID").
		Str(log.KeyProcess, "finding product by id").
		Int64(log.KeyProductID, id).
		Logger()

	logger.Debug().Msgf("finding product by id=%d", id)
	product := response.Product{}
	path := gateway.PathProducts + "/" + strconv.FormatInt(id, 10)
	if err := s.gateway.Get(logger.WithContext(c), path, nil, &product); err != nil {
		err = fmt.Errorf("failed finding product by id=%d with error=%w", id, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Debug().Object(log.KeyProduct, product).Msgf("found product by id=%d", id)

	return product, nil
}

// SearchProducts matches products by name. A blank name lists every product.
func (s *ProductService) SearchProducts(c context.Context, name string) ([]response.Product, error) {
	c, span := tracer.Start(c, "ProductService SearchProducts")
	defer span.End()

	name = strings.TrimSpace(name)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService SearchProducts").
		Str(log.KeySearchName, name).
		Logger()

	if name == "" {
		logger.Debug().Msg("blank search, listing products")
		return s.FindProducts(logger.WithContext(c))
	}

	logger = logger.With().Str(log.KeyProcess, "searching products").Logger()
	logger.Debug().Msgf("searching products by name=%s", name)
	products := []response.Product{}
	query := url.Values{"name": {name}}
	if err := s.gateway.Get(logger.WithContext(c), gateway.PathProductsSearch, query, &products); err != nil {
		err = fmt.Errorf("failed searching products by name=%s with error=%w", name, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int("count", len(products)).Msg("searched products")

	return products, nil
}
