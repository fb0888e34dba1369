// Package app assembles the storefront from configuration: logger, store,
// gateway and the domain services, restored from the persisted state.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	adminService "github.com/Alturino/storefront/admin/service"
	cartService "github.com/Alturino/storefront/cart/service"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/gateway"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/storage"
	orderService "github.com/Alturino/storefront/order/service"
	productService "github.com/Alturino/storefront/product/service"
	sessionService "github.com/Alturino/storefront/session/service"
)

type App struct {
	Config   config.Config
	Logger   zerolog.Logger
	Store    storage.Store
	Gateway  *gateway.Client
	Session  *sessionService.SessionService
	Cart     *cartService.CartService
	Products *productService.ProductService
	Orders   *orderService.OrderService
	Admin    *adminService.AdminService

	closeStore    storage.CloseFunc
	otelShutdowns []otel.ShutdownFunc
}

func New(c context.Context, cfg config.Config, gatewayOpts ...gateway.Option) (*App, error) {
	a := &App{}
	if err := a.Open(c, cfg, gatewayOpts...); err != nil {
		return nil, err
	}
	return a, nil
}

// Open wires every service against the configured store and api, then
// hydrates the cart and the session from the store.
func (a *App) Open(c context.Context, cfg config.Config, gatewayOpts ...gateway.Option) error {
	c, span := otel.Tracer.Start(c, "app Open")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "app Open").
		Logger()

	a.Config = cfg
	a.Logger = *zerolog.Ctx(c)

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Debug().Msg("initializing otel sdk")
	shutdowns, err := otel.InitOtelSdk(logger.WithContext(c), constants.AppStorefront, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	a.otelShutdowns = shutdowns
	logger.Debug().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing storage").Logger()
	logger.Debug().Msg("initializing storage")
	store, closeStore, err := storage.New(logger.WithContext(c), cfg)
	if err != nil {
		err = fmt.Errorf("failed initializing storage with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		_ = otel.ShutdownOtel(c, shutdowns)
		return err
	}
	a.Store = store
	a.closeStore = closeStore
	logger.Debug().Msg("initialized storage")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Debug().Msg("initializing services")
	a.Gateway = gateway.New(cfg.Application.APIURL, gatewayOpts...)
	a.Session = sessionService.NewSessionService(store, a.Gateway)
	a.Cart = cartService.NewCartService(store)
	a.Products = productService.NewProductService(a.Gateway)
	a.Orders = orderService.NewOrderService(a.Gateway, a.Cart, a.Session)
	a.Admin = adminService.NewAdminService(a.Gateway, a.Session)
	logger.Debug().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "hydrating state").Logger()
	logger.Debug().Msg("hydrating state")
	c = logger.WithContext(c)
	a.Cart.Hydrate(c)
	a.Session.Hydrate(c)
	logger.Debug().
		Bool("authenticated", a.Session.IsAuthenticated()).
		Int(log.KeyCartItemCount, a.Cart.ItemCount()).
		Msg("hydrated state")

	return nil
}

func (a *App) Close(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "app Close").
		Logger()

	var errs []error
	if a.closeStore != nil {
		logger.Debug().Msg("closing storage")
		if err := a.closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("failed closing storage with error=%w", err))
		}
	}
	logger.Debug().Msg("shutting down otel")
	if err := otel.ShutdownOtel(c, a.otelShutdowns); err != nil {
		errs = append(errs, fmt.Errorf("failed shutting down otel with error=%w", err))
	}
	for _, err := range errs {
		logger.Error().Err(err).Msg(err.Error())
	}
	return errors.Join(errs...)
}
