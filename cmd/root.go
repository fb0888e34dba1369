package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	adminCmd "github.com/Alturino/storefront/admin/cmd"
	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	orderCmd "github.com/Alturino/storefront/order/cmd"
	productCmd "github.com/Alturino/storefront/product/cmd"
	sessionCmd "github.com/Alturino/storefront/session/cmd"
	shopCmd "github.com/Alturino/storefront/shop/cmd"
)

func NewRootCommand(a *app.App, cfg config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.AppStorefront,
		Short:         "Grocery storefront client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Open(cmd.Context(), cfg); err != nil {
				return err
			}
			a.Session.OnInvalidated(func(context.Context) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Your session has expired, run `storefront login` to continue")
			})
			return nil
		},
	}
	rootCmd.AddCommand(
		sessionCmd.NewLoginCommand(a),
		sessionCmd.NewLogoutCommand(a),
		sessionCmd.NewRegisterCommand(a),
		sessionCmd.NewWhoamiCommand(a),
		productCmd.NewProductsCommand(a),
		cartCmd.NewCartCommand(a),
		orderCmd.NewCheckoutCommand(a),
		orderCmd.NewOrdersCommand(a),
		adminCmd.NewAdminCommand(a),
		shopCmd.NewServeCommand(a),
	)
	return rootCmd
}

// Message turns a command error into the line shown to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, inErrors.ErrUnauthorized):
		return "Please login first: run `storefront login`"
	case errors.Is(err, inErrors.ErrForbidden):
		return "This command requires an admin account"
	case errors.Is(err, inErrors.ErrPlaceOrder):
		return "Failed to place order. Please try again."
	default:
		return err.Error()
	}
}

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	cfg := config.Get(bootstrap.WithContext(c), constants.AppStorefront)

	logger := log.Get(cfg.Application.LogPath, cfg.Application.Env, cfg.Application.LogLevel).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Logger()
	c = logger.WithContext(c)

	a := &app.App{}
	err := NewRootCommand(a, *cfg).ExecuteContext(c)
	if a.Store != nil {
		if closeErr := a.Close(context.WithoutCancel(c)); closeErr != nil {
			logger.Error().Err(closeErr).Msg(closeErr.Error())
		}
	}
	if err != nil {
		logger.Debug().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, Message(err))
		stop()
		os.Exit(1)
	}
}
