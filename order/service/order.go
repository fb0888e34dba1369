package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	cartService "github.com/Alturino/storefront/cart/service"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/validate"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

var tracer = otel.Tracer(constants.AppOrderService)

type Authenticator interface {
	IsAuthenticated() bool
}

type OrderService struct {
	gateway *gateway.Client
	cart    *cartService.CartService
	session Authenticator
}

func NewOrderService(
	gateway *gateway.Client,
	cart *cartService.CartService,
	session Authenticator,
) *OrderService {
	return &OrderService{gateway: gateway, cart: cart, session: session}
}

// Checkout places the cart as an order and on success removes the ordered
// lines from the cart. An empty cart is rejected before any request is made.
// Checkout is simulated by the api, no payment is taken.
func (s *OrderService) Checkout(c context.Context) (response.Order, error) {
	c, span := tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Checkout").
		Logger()

	if !s.session.IsAuthenticated() {
		err := fmt.Errorf("failed checking out with error=%w", inErrors.ErrUnauthorized)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating cart").Logger()
	logger.Trace().Msg("validating cart")
	snapshot := s.cart.Snapshot()
	if len(snapshot.Lines) == 0 {
		inOtel.RecordError(inErrors.ErrEmptyCart, span)
		logger.Error().Err(inErrors.ErrEmptyCart).Msg(inErrors.ErrEmptyCart.Error())
		return response.Order{}, inErrors.ErrEmptyCart
	}
	param := request.FromCart(snapshot.Lines)
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().
		Int(log.KeyCartLines, len(snapshot.Lines)).
		Int(log.KeyCartItemCount, snapshot.ItemCount).
		Str(log.KeyCartTotal, snapshot.Total.StringFixed(2)).
		Logger()
	logger.Trace().Msg("validated cart")

	logger = logger.With().Str(log.KeyProcess, "placing order").Logger()
	logger.Info().Msg("placing order")
	order := response.Order{}
	if err := s.gateway.Post(logger.WithContext(c), gateway.PathOrders, param, &order); err != nil {
		err = fmt.Errorf("%w: %w", inErrors.ErrPlaceOrder, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Int64(log.KeyOrderID, order.ID).Logger()
	logger.Info().Msg("placed order")

	logger = logger.With().Str(log.KeyProcess, "removing ordered lines").Logger()
	s.cart.RemoveOrdered(logger.WithContext(c), snapshot.Lines)

	return order, nil
}

func (s *OrderService) FindOrderHistory(c context.Context) ([]response.Order, error) {
	c, span := tracer.Start(c, "OrderService FindOrderHistory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderHistory").
		Str(log.KeyProcess, "finding order history").
		Logger()

	logger.Debug().Msg("finding order history")
	orders := []response.Order{}
	if err := s.gateway.Get(logger.WithContext(c), gateway.PathOrderHistory, nil, &orders); err != nil {
		err = fmt.Errorf("failed finding order history with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int(log.KeyOrders, len(orders)).Msg("found order history")

	return orders, nil
}

func (s *OrderService) FindOrderByID(c context.Context, param request.FindOrderById) (response.Order, error) {
	c, span := tracer.Start(c, "OrderService FindOrderByID")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderByID").
		Int64(log.KeyOrderID, param.OrderID).
		Logger()

	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating orderId=%d with error=%w", param.OrderID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Debug().Msgf("finding order by id=%d", param.OrderID)
	order := response.Order{}
	path := gateway.PathOrders + "/" + strconv.FormatInt(param.OrderID, 10)
	if err := s.gateway.Get(logger.WithContext(c), path, nil, &order); err != nil {
		err = fmt.Errorf("failed finding order by id=%d with error=%w", param.OrderID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Debug().Msgf("found order by id=%d", param.OrderID)

	return order, nil
}
