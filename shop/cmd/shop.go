package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	adminCmd "github.com/Alturino/storefront/admin/cmd"
	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	"github.com/Alturino/storefront/internal/otel"
	orderCmd "github.com/Alturino/storefront/order/cmd"
	productCmd "github.com/Alturino/storefront/product/cmd"
	sessionCmd "github.com/Alturino/storefront/session/cmd"
)

const PathMetrics = "/metrics"

// NewRouter builds the view server routes. Every route except the metrics
// endpoint passes the route guard.
func NewRouter(a *app.App) *mux.Router {
	router := mux.NewRouter()
	router.Handle(PathMetrics, promhttp.Handler()).Methods(http.MethodGet)

	views := router.NewRoute().Subrouter()
	views.Use(
		otelmux.Middleware(constants.AppShopServer),
		middleware.Logging(a.Logger),
		middleware.RecoverPanic,
		middleware.Guard(a.Session),
	)
	sessionCmd.AttachRoutes(views, a)
	productCmd.AttachRoutes(views, a)
	cartCmd.AttachRoutes(views, a)
	orderCmd.AttachRoutes(views, a)
	adminCmd.AttachRoutes(views, a)
	return router
}

func RunShopServer(c context.Context, a *app.App) error {
	c, span := otel.Tracer.Start(c, "RunShopServer")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppShopServer).
		Str(log.KeyTag, "main RunShopServer").
		Logger()

	a.Session.OnInvalidated(func(c context.Context) {
		zerolog.Ctx(c).Warn().Str(log.KeyRedirect, "/login").Msg("session expired, login required")
	})

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := NewRouter(a)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	c = logger.WithContext(c)
	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Application.Host, a.Config.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	serverErr := make(chan error, 1)
	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-c.Done():
	}

	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("shutdown http server")

	return <-serverErr
}

func NewServeCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local view server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunShopServer(cmd.Context(), a)
		},
	}
}
