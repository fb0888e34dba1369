package cmd

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/cli"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/product/pkg/request"
	productCmd "github.com/Alturino/storefront/product/cmd"
	productRes "github.com/Alturino/storefront/product/pkg/response"
)

type productFlags struct {
	name     string
	price    string
	quantity int
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "0", "unit price")
	cmd.Flags().IntVar(&f.quantity, "quantity", 0, "units in stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
}

func (f *productFlags) request() (request.Product, error) {
	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return request.Product{}, fmt.Errorf("invalid price=%s", f.price)
	}
	return request.Product{Name: f.name, Price: price, Quantity: f.quantity}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid productId=%s", raw)
	}
	return id, nil
}

type runFunc func(cmd *cobra.Command, args []string) error

// guarded runs fn only for admin sessions.
func guarded(a *app.App, fn runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.Authorize(route.Admin); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func NewAdminCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage products and users, admin only",
	}
	cmd.AddCommand(newProductsCommand(a), newUsersCommand(a))
	return cmd
}

func newProductsCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Manage the catalogue"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every product",
		RunE: guarded(a, func(cmd *cobra.Command, args []string) error {
			products, err := a.Admin.FindProducts(cmd.Context())
			if err != nil {
				return err
			}
			return productCmd.PrintProducts(cmd, products)
		}),
	}

	createFlags := productFlags{}
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		RunE: guarded(a, func(cmd *cobra.Command, args []string) error {
			param, err := createFlags.request()
			if err != nil {
				return err
			}
			product, err := a.Admin.InsertProduct(cmd.Context(), param)
			if err != nil {
				return err
			}
			return productCmd.PrintProducts(cmd, []productRes.Product{product})
		}),
	}
	createFlags.bind(create)

	updateFlags := productFlags{}
	update := &cobra.Command{
		Use:   "update <productId>",
		Short: "Replace a product",
		Args:  cobra.ExactArgs(1),
		RunE: guarded(a, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			param, err := updateFlags.request()
			if err != nil {
				return err
			}
			product, err := a.Admin.UpdateProduct(cmd.Context(), id, param)
			if err != nil {
				return err
			}
			return productCmd.PrintProducts(cmd, []productRes.Product{product})
		}),
	}
	updateFlags.bind(update)

	remove := &cobra.Command{
		Use:   "delete <productId>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: guarded(a, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.Admin.RemoveProduct(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted product #%d\n", id)
			return err
		}),
	}

	cmd.AddCommand(list, create, update, remove)
	return cmd
}

func newUsersCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Look up customers"}
	search := &cobra.Command{
		Use:   "search <name>",
		Short: "Find users by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: guarded(a, func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			users, err := a.Admin.SearchUsers(cmd.Context(), name)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No users found")
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Name,
					u.Email,
					u.Address,
					u.ContactNumber,
				})
			}
			return cli.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "EMAIL", "ADDRESS", "CONTACT"}, rows)
		}),
	}
	cmd.AddCommand(search)
	return cmd
}
