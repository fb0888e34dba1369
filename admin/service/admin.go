// Package service implements the admin dashboard operations. Every call is
// refused locally unless the session holds an admin identity; the api still
// has the final say.
package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/admin/pkg/response"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/validate"
	"github.com/Alturino/storefront/product/pkg/request"
	productRes "github.com/Alturino/storefront/product/pkg/response"
)

var tracer = otel.Tracer(constants.AppAdminService)

type Authorizer interface {
	IsAdmin() bool
}

type AdminService struct {
	gateway *gateway.Client
	session Authorizer
}

func NewAdminService(gateway *gateway.Client, session Authorizer) *AdminService {
	return &AdminService{gateway: gateway, session: session}
}

func (s *AdminService) authorize(logger zerolog.Logger, span trace.Span) error {
	if s.session.IsAdmin() {
		return nil
	}
	inOtel.RecordError(inErrors.ErrForbidden, span)
	logger.Error().Err(inErrors.ErrForbidden).Msg(inErrors.ErrForbidden.Error())
	return inErrors.ErrForbidden
}

func productPath(id int64) string {
	return gateway.PathAdminProducts + "/" + strconv.FormatInt(id, 10)
}

func (s *AdminService) FindProducts(c context.Context) ([]productRes.Product, error) {
	c, span := tracer.Start(c, "AdminService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService FindProducts").
		Str(log.KeyProcess, "finding products").
		Logger()

	if err := s.authorize(logger, span); err != nil {
		return nil, err
	}

	logger.Debug().Msg("finding products")
	products := []productRes.Product{}
	if err := s.gateway.Get(logger.WithContext(c), gateway.PathAdminProducts, nil, &products); err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int("count", len(products)).Msg("found products")

	return products, nil
}

func (s *AdminService) InsertProduct(c context.Context, param request.Product) (productRes.Product, error) {
	c, span := tracer.Start(c, "AdminService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService InsertProduct").
		Str(log.KeyProductName, param.Name).
		Logger()

	if err := s.authorize(logger, span); err != nil {
		return productRes.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating product").Logger()
	logger.Trace().Msg("validating product")
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	product := productRes.Product{}
	if err := s.gateway.Post(logger.WithContext(c), gateway.PathAdminProducts, param, &product); err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}
	logger.Info().Int64(log.KeyProductID, product.ID).Msg("inserted product")

	return product, nil
}

func (s *AdminService) UpdateProduct(
	c context.Context,
	id int64,
	param request.Product,
) (productRes.Product, error) {
	c, span := tracer.Start(c, "AdminService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService UpdateProduct").
		Int64(log.KeyProductID, id).
		Logger()

	if err := s.authorize(logger, span); err != nil {
		return productRes.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating product").Logger()
	if id <= 0 {
		err := fmt.Errorf("failed updating productId=%d with error=%w", id, inErrors.ErrInvalidProductID)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Info().Msg("updating product")
	product := productRes.Product{}
	if err := s.gateway.Put(logger.WithContext(c), productPath(id), param, &product); err != nil {
		err = fmt.Errorf("failed updating productId=%d with error=%w", id, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productRes.Product{}, err
	}
	logger.Info().Msg("updated product")

	return product, nil
}

func (s *AdminService) RemoveProduct(c context.Context, id int64) error {
	c, span := tracer.Start(c, "AdminService RemoveProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService RemoveProduct").
		Int64(log.KeyProductID, id).
		Logger()

	if err := s.authorize(logger, span); err != nil {
		return err
	}
	if id <= 0 {
		err := fmt.Errorf("failed removing productId=%d with error=%w", id, inErrors.ErrInvalidProductID)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "removing product").Logger()
	logger.Info().Msg("removing product")
	if err := s.gateway.Delete(logger.WithContext(c), productPath(id)); err != nil {
		err = fmt.Errorf("failed removing productId=%d with error=%w", id, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("removed product")

	return nil
}

// SearchUsers finds users by name. A blank name returns no users without
// calling the api.
func (s *AdminService) SearchUsers(c context.Context, name string) ([]response.User, error) {
	c, span := tracer.Start(c, "AdminService SearchUsers")
	defer span.End()

	name = strings.TrimSpace(name)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService SearchUsers").
		Str(log.KeySearchName, name).
		Logger()

	if err := s.authorize(logger, span); err != nil {
		return nil, err
	}
	if name == "" {
		logger.Debug().Msg("blank search, skipping")
		return []response.User{}, nil
	}

	logger = logger.With().Str(log.KeyProcess, "searching users").Logger()
	logger.Debug().Msg("searching users")
	users := []response.User{}
	query := url.Values{"name": {name}}
	if err := s.gateway.Get(logger.WithContext(c), gateway.PathAdminUsersSearch, query, &users); err != nil {
		err = fmt.Errorf("failed searching users by name=%s with error=%w", name, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int("count", len(users)).Msg("searched users")

	return users, nil
}
