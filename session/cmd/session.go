package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/session/pkg/request"
)

func NewLoginCommand(a *app.App) *cobra.Command {
	param := request.Login{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Login); err != nil {
				return err
			}
			user, err := a.Session.Login(cmd.Context(), param)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (%s)\n", user.Name, user.Role)
			return err
		},
	}
	cmd.Flags().StringVarP(&param.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&param.Password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func NewLogoutCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Logout); err != nil {
				return err
			}
			a.Session.Logout(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func NewRegisterCommand(a *app.App) *cobra.Command {
	param := request.Register{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Register); err != nil {
				return err
			}
			message, err := a.Session.Register(cmd.Context(), param)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s, run login to continue\n", message)
			return err
		},
	}
	cmd.Flags().StringVar(&param.Name, "name", "", "full name")
	cmd.Flags().StringVarP(&param.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&param.Password, "password", "p", "", "account password, at least 6 characters")
	cmd.Flags().StringVar(&param.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&param.ContactNumber, "contact", "", "contact number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func NewWhoamiCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, ok := a.Session.User()
			if !ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return err
			}
			_, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s <%s> role=%s cart=%d item(s)\n",
				user.Name,
				user.Email,
				user.Role,
				a.Cart.ItemCount(),
			)
			return err
		},
	}
}
